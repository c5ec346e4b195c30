package pasteboard

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

type failingPasteboard struct{ err error }

func (f failingPasteboard) Items() ([]Item, error) { return nil, f.err }
func (f failingPasteboard) Replace(items []Item) error { return f.err }

func TestCaptureRestoreRoundTrip(t *testing.T) {
	original := []Item{
		{
			TypeText:         []byte("hello"),
			"public.html":    []byte("<b>hello</b>"),
			"com.example.rt": {0x00, 0x01, 0xff},
		},
		{
			TypePNG: {0x89, 'P', 'N', 'G'},
		},
	}
	pb := NewMemory(original...)

	snap, err := Capture(pb)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a snapshot for a non-empty pasteboard")
	}

	if err := snap.Restore(pb); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	got, _ := pb.Items()
	if !reflect.DeepEqual(got, original) {
		t.Fatalf("round trip mismatch:\n got  %v\n want %v", got, original)
	}
}

func TestRestoreAfterOverwrite(t *testing.T) {
	pb := NewMemory(TextItem("original"))

	snap, err := Capture(pb)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	if err := pb.Replace([]Item{PNGItem([]byte{1, 2, 3})}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if err := snap.Restore(pb); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	items, _ := pb.Items()
	if len(items) != 1 || !bytes.Equal(items[0][TypeText], []byte("original")) {
		t.Fatalf("expected original text back, got %v", items)
	}
	if _, ok := items[0][TypePNG]; ok {
		t.Fatal("image representation leaked into restored clipboard")
	}
}

func TestCaptureEmptyReturnsNil(t *testing.T) {
	snap, err := Capture(NewMemory())
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %v", snap)
	}
}

func TestCaptureKeepsItemsWithoutRepresentations(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
	}{
		{name: "only item", items: []Item{{}}},
		{name: "between items", items: []Item{TextItem("first"), {}, PNGItem([]byte{1, 2, 3})}},
		{name: "leading", items: []Item{{}, TextItem("second")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewMemory(tt.items...)
			snap, err := Capture(pb)
			if err != nil {
				t.Fatalf("capture failed: %v", err)
			}
			if snap == nil || len(snap.Items) != len(tt.items) {
				t.Fatalf("expected %d items captured, got %v", len(tt.items), snap)
			}

			if err := pb.Replace([]Item{TextItem("payload")}); err != nil {
				t.Fatalf("replace failed: %v", err)
			}
			if err := snap.Restore(pb); err != nil {
				t.Fatalf("restore failed: %v", err)
			}

			got, _ := pb.Items()
			if len(got) != len(tt.items) {
				t.Fatalf("expected %d items restored, got %d", len(tt.items), len(got))
			}
			for i := range tt.items {
				if len(got[i]) != len(tt.items[i]) {
					t.Fatalf("item %d: expected %v, got %v", i, tt.items[i], got[i])
				}
				for typ, data := range tt.items[i] {
					if !bytes.Equal(got[i][typ], data) {
						t.Fatalf("item %d: %s mismatch", i, typ)
					}
				}
			}
		})
	}
}

func TestRestoreNilSnapshotIsNoop(t *testing.T) {
	pb := NewMemory(TextItem("keep"))

	var snap *Snapshot
	if err := snap.Restore(pb); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if pb.Writes() != 0 {
		t.Fatalf("expected no writes, got %d", pb.Writes())
	}
}

func TestSnapshotIsIndependentOfSource(t *testing.T) {
	data := []byte("mutable")
	pb := NewMemory(Item{TypeText: data})

	snap, _ := Capture(pb)
	items, _ := pb.Items()
	items[0][TypeText][0] = 'X'
	data[0] = 'Y'

	if got := string(snap.Items[0][TypeText]); got != "mutable" {
		t.Fatalf("snapshot aliased caller buffers: %q", got)
	}
}

func TestCaptureWrapsBackendError(t *testing.T) {
	backend := errors.New("locked")

	_, err := Capture(failingPasteboard{err: backend})
	if !errors.Is(err, backend) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}

	snap := &Snapshot{Items: []Item{TextItem("x")}}
	if err := snap.Restore(failingPasteboard{err: backend}); !errors.Is(err, backend) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}
