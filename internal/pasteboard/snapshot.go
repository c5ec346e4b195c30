package pasteboard

import "fmt"

// Snapshot is a verbatim copy of the clipboard taken before the engine writes to it
type Snapshot struct {
	Items []Item
}

// Capture copies every item and representation currently on pb. Items with
// no readable representation are kept empty so count and order survive.
// It returns a nil snapshot when the clipboard holds no items.
func Capture(pb Pasteboard) (*Snapshot, error) {
	items, err := pb.Items()
	if err != nil {
		return nil, fmt.Errorf("failed to read pasteboard: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	captured := make([]Item, len(items))
	for i, it := range items {
		captured[i] = it.Clone()
	}

	return &Snapshot{Items: captured}, nil
}

// Restore puts the captured items back. Restoring a nil snapshot is a no-op.
func (s *Snapshot) Restore(pb Pasteboard) error {
	if s == nil {
		return nil
	}

	items := make([]Item, len(s.Items))
	for i, it := range s.Items {
		items[i] = it.Clone()
	}

	if err := pb.Replace(items); err != nil {
		return fmt.Errorf("failed to restore pasteboard: %w", err)
	}
	return nil
}

// Types lists the representations held by the snapshot, for diagnostics
func (s *Snapshot) Types() []string {
	if s == nil {
		return nil
	}
	var types []string
	for _, it := range s.Items {
		for typ := range it {
			types = append(types, typ)
		}
	}
	return types
}
