//go:build darwin

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
// #include <stdlib.h>
// #include <string.h>
//
// typedef struct {
//     int    item;
//     char  *tag;
//     void  *data;
//     size_t size;
// } pastestack_payload;
//
// NSInteger pastestack_changeCount() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
//
// void pastestack_free(pastestack_payload *ps, int n) {
//     if (ps == NULL) return;
//     for (int i = 0; i < n; i++) {
//         free(ps[i].tag);
//         free(ps[i].data);
//     }
//     free(ps);
// }
//
// // Copies every (item, type) pair off the pasteboard. *nitems receives the
// // number of pasteboard items, *n the number of payloads returned.
// pastestack_payload *pastestack_read(int *nitems, int *n) {
//     *nitems = 0;
//     *n = 0;
//     @autoreleasepool {
//         NSArray<NSPasteboardItem *> *items = [[NSPasteboard generalPasteboard] pasteboardItems];
//         NSUInteger total = 0;
//         for (NSPasteboardItem *it in items) total += [[it types] count];
//         *nitems = (int)[items count];
//         if (total == 0) return NULL;
//
//         pastestack_payload *out = calloc(total, sizeof(pastestack_payload));
//         int idx = 0;
//         for (NSPasteboardItem *it in items) {
//             for (NSString *t in [it types]) {
//                 NSData *d = [it dataForType:t];
//                 if (d == nil || *n >= (int)total) continue;
//                 NSUInteger len = [d length];
//                 out[*n].item = idx;
//                 out[*n].tag = strdup([t UTF8String]);
//                 out[*n].data = malloc(len > 0 ? len : 1);
//                 memcpy(out[*n].data, [d bytes], len);
//                 out[*n].size = len;
//                 (*n)++;
//             }
//             idx++;
//         }
//         return out;
//     }
// }
//
// // Clears the pasteboard and writes one NSPasteboardItem per item. Returns
// // -1 on success, the index of a refused payload, or -2 when the pasteboard
// // rejected the finished items.
// int pastestack_write(int nitems, pastestack_payload *ps, int n) {
//     @autoreleasepool {
//         NSPasteboard *pb = [NSPasteboard generalPasteboard];
//         [pb clearContents];
//         if (nitems == 0) return -1;
//
//         NSMutableArray<NSPasteboardItem *> *objs = [NSMutableArray arrayWithCapacity:nitems];
//         for (int i = 0; i < nitems; i++) {
//             [objs addObject:[[[NSPasteboardItem alloc] init] autorelease]];
//         }
//         for (int k = 0; k < n; k++) {
//             NSString *t = [NSString stringWithUTF8String:ps[k].tag];
//             NSData *d = [NSData dataWithBytes:ps[k].data length:ps[k].size];
//             if (t == nil || ![objs[ps[k].item] setData:d forType:t]) return k;
//         }
//         return [pb writeObjects:objs] ? -1 : -2;
//     }
// }
import "C"

import (
	"errors"
	"fmt"
	"unsafe"
)

// darwinBackend talks to NSPasteboard directly so that every pasteboard
// item and every type on it survives a capture and a restore.
type darwinBackend struct{}

// New returns the macOS clipboard backend. NSPasteboard's changeCount is the
// change token.
func New() Backend { return &darwinBackend{} }

func (b *darwinBackend) Name() string { return "macOS NSPasteboard" }

func (b *darwinBackend) ChangeCount() (int64, error) {
	return int64(C.pastestack_changeCount()), nil
}

func (b *darwinBackend) Read() ([]Item, error) {
	var nitems, n C.int
	ps := C.pastestack_read(&nitems, &n)
	defer C.pastestack_free(ps, n)

	flat := make([]flatPayload, 0, int(n))
	if ps != nil {
		for _, p := range unsafe.Slice(ps, int(n)) {
			flat = append(flat, flatPayload{
				Item: int(p.item),
				Payload: Payload{
					Type: C.GoString(p.tag),
					Data: C.GoBytes(p.data, C.int(p.size)),
				},
			})
		}
	}
	return regroup(int(nitems), flat), nil
}

func (b *darwinBackend) Write(items []Item) error {
	flat := flatten(items)
	n := len(flat)

	ps := (*C.pastestack_payload)(C.calloc(C.size_t(max(n, 1)), C.size_t(unsafe.Sizeof(C.pastestack_payload{}))))
	defer C.pastestack_free(ps, C.int(n))

	slots := unsafe.Slice(ps, n)
	for k, p := range flat {
		slots[k] = C.pastestack_payload{
			item: C.int(p.Item),
			tag:  C.CString(p.Type),
			data: C.CBytes(p.Data),
			size: C.size_t(len(p.Data)),
		}
	}

	rc := int(C.pastestack_write(C.int(len(items)), ps, C.int(n)))
	switch {
	case rc == -1:
		return nil
	case rc >= 0 && rc < n:
		return &RejectedError{Type: flat[rc].Type, Err: errors.New("pasteboard refused data")}
	}
	return fmt.Errorf("%w: pasteboard refused %d items", ErrUnavailable, len(items))
}

func (b *darwinBackend) Close() {}
