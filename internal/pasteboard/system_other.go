//go:build !darwin

package pasteboard

import (
	"fmt"
	"sync"

	atotto "github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.design/x/clipboard"
)

// System is the platform clipboard. The native backend holds one text and
// one PNG representation; when it cannot start (no display, no cgo) the
// text-only fallback shells out to xclip/xsel/wl-copy or the Win32 API.
type System struct {
	log    zerolog.Logger
	native bool
	mu     sync.Mutex
}

// NewSystem picks the best available clipboard backend
func NewSystem(log zerolog.Logger) (*System, error) {
	if err := clipboard.Init(); err != nil {
		if atotto.Unsupported {
			return nil, fmt.Errorf("no clipboard backend available: %w", err)
		}
		log.Warn().Err(err).Msg("Native clipboard unavailable, images will not be pasted")
		return &System{log: log}, nil
	}
	return &System{log: log, native: true}, nil
}

func (s *System) Items() ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := Item{}
	if s.native {
		if text := clipboard.Read(clipboard.FmtText); len(text) > 0 {
			item[TypeText] = text
		}
		if img := clipboard.Read(clipboard.FmtImage); len(img) > 0 {
			item[TypePNG] = img
		}
	} else {
		text, err := atotto.ReadAll()
		if err != nil {
			return nil, err
		}
		if text != "" {
			item[TypeText] = []byte(text)
		}
	}

	if len(item) == 0 {
		return nil, nil
	}
	return []Item{item}, nil
}

// Replace writes the first item. Only one representation survives on these
// platforms, so an item carrying an image keeps the image.
func (s *System) Replace(items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) > 1 {
		s.log.Debug().Int("dropped", len(items)-1).Msg("Clipboard holds one item, extra items dropped")
	}

	var item Item
	if len(items) > 0 {
		item = items[0]
	}

	img, hasImage := item[TypePNG]
	text := item[TypeText]

	if !s.native {
		if hasImage && text == nil {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, TypePNG)
		}
		return atotto.WriteAll(string(text))
	}

	if hasImage {
		clipboard.Write(clipboard.FmtImage, img)
		return nil
	}
	clipboard.Write(clipboard.FmtText, text)
	return nil
}
