//go:build darwin

package pasteboard

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>
#include <stdlib.h>
#include <string.h>

// Each captured item is an array of @[type, data] pairs in the order the
// pasteboard item reports its types.
static void *pbCopyItems(void) {
    @autoreleasepool {
        NSArray<NSPasteboardItem *> *items = [[NSPasteboard generalPasteboard] pasteboardItems];
        NSMutableArray *out = [NSMutableArray arrayWithCapacity:items.count];
        for (NSPasteboardItem *item in items) {
            NSMutableArray *reps = [NSMutableArray array];
            for (NSPasteboardType type in item.types) {
                NSData *data = [item dataForType:type];
                if (data != nil) {
                    [reps addObject:@[type, data]];
                }
            }
            [out addObject:reps];
        }
        return (__bridge_retained void *)out;
    }
}

static int pbItemCount(void *items) {
    return (int)((__bridge NSArray *)items).count;
}

static int pbTypeCount(void *items, int i) {
    NSArray *reps = ((__bridge NSArray *)items)[i];
    return (int)reps.count;
}

static char *pbTypeAt(void *items, int i, int t) {
    @autoreleasepool {
        NSArray *reps = ((__bridge NSArray *)items)[i];
        NSArray *pair = reps[t];
        NSString *type = pair[0];
        return strdup(type.UTF8String);
    }
}

static const void *pbDataAt(void *items, int i, int t, int *length) {
    NSArray *reps = ((__bridge NSArray *)items)[i];
    NSArray *pair = reps[t];
    NSData *data = pair[1];
    *length = (int)data.length;
    return data.bytes;
}

static void pbRelease(void *items) {
    CFRelease((CFTypeRef)items);
}

static void *pbNewWriter(void) {
    return (__bridge_retained void *)[NSMutableArray array];
}

static void pbWriterAddItem(void *w) {
    @autoreleasepool {
        [(__bridge NSMutableArray *)w addObject:[[NSPasteboardItem alloc] init]];
    }
}

static void pbWriterSetData(void *w, const char *type, const void *bytes, int length) {
    @autoreleasepool {
        NSPasteboardItem *item = ((__bridge NSMutableArray *)w).lastObject;
        NSData *data = [NSData dataWithBytes:bytes length:(NSUInteger)length];
        [item setData:data forType:[NSString stringWithUTF8String:type]];
    }
}

static int pbWriterCommit(void *w) {
    @autoreleasepool {
        NSMutableArray *items = (__bridge_transfer NSMutableArray *)w;
        NSPasteboard *pb = [NSPasteboard generalPasteboard];
        [pb clearContents];
        if (items.count == 0) {
            return 1;
        }
        return [pb writeObjects:items] ? 1 : 0;
    }
}
*/
import "C"

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/rs/zerolog"
)

// System is the general NSPasteboard. Every item and type is preserved.
type System struct {
	log zerolog.Logger
	mu  sync.Mutex
}

// NewSystem returns the macOS pasteboard backend
func NewSystem(log zerolog.Logger) (*System, error) {
	return &System{log: log}, nil
}

func (s *System) Items() ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := C.pbCopyItems()
	defer C.pbRelease(ref)

	count := int(C.pbItemCount(ref))
	items := make([]Item, 0, count)
	for i := 0; i < count; i++ {
		types := int(C.pbTypeCount(ref, C.int(i)))
		item := make(Item, types)
		for t := 0; t < types; t++ {
			ctype := C.pbTypeAt(ref, C.int(i), C.int(t))
			typ := C.GoString(ctype)
			C.free(unsafe.Pointer(ctype))

			var length C.int
			data := C.pbDataAt(ref, C.int(i), C.int(t), &length)
			item[typ] = C.GoBytes(data, length)
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *System) Replace(items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := C.pbNewWriter()
	for _, it := range items {
		C.pbWriterAddItem(w)
		for typ, data := range it {
			ctype := C.CString(typ)
			var ptr unsafe.Pointer
			if len(data) > 0 {
				ptr = unsafe.Pointer(&data[0])
			}
			C.pbWriterSetData(w, ctype, ptr, C.int(len(data)))
			C.free(unsafe.Pointer(ctype))
		}
	}

	if C.pbWriterCommit(w) == 0 {
		return errors.New("NSPasteboard rejected writeObjects")
	}
	return nil
}
