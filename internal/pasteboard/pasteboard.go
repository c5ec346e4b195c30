// Package pasteboard reads and replaces the system clipboard as a list of
// items, each holding one or more typed representations.
package pasteboard

import "errors"

// Uniform type identifiers used across backends
const (
	TypeText = "public.utf8-plain-text"
	TypePNG  = "public.png"
)

// ErrUnsupportedType is returned when a backend cannot hold a representation
var ErrUnsupportedType = errors.New("unsupported pasteboard type")

// Item maps a type identifier to its raw bytes
type Item map[string][]byte

// Pasteboard is the clipboard as seen by the engine
type Pasteboard interface {
	// Items returns every item currently on the clipboard, in order
	Items() ([]Item, error)
	// Replace clears the clipboard and writes items as one operation
	Replace(items []Item) error
}

// TextItem builds a single plain-text item
func TextItem(text string) Item {
	return Item{TypeText: []byte(text)}
}

// PNGItem builds a single raster item
func PNGItem(data []byte) Item {
	return Item{TypePNG: data}
}

// Clone deep-copies the item so later writes cannot alias the caller's buffers
func (it Item) Clone() Item {
	out := make(Item, len(it))
	for typ, data := range it {
		out[typ] = append([]byte(nil), data...)
	}
	return out
}
