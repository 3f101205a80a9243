//go:build darwin

package darwin

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework AppKit
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#import <AppKit/AppKit.h>
#include <stdlib.h>
#include <stdint.h>

typedef struct {
	int hasNumber;
	int64_t number;
	int hasPID;
	int32_t pid;
	int hasAlpha;
	double alpha;
	int hasBounds;
	double x, y, width, height;
	int hasMemory;
	int64_t memory;
	char *ownerName;
	char *name;
} awWindow;

static int awFrontmostPID(void) {
	@autoreleasepool {
		NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
		if (app == nil) {
			return -1;
		}
		return (int)[app processIdentifier];
	}
}

static int awReadNumber(CFDictionaryRef dict, CFStringRef key, CFNumberType type, void *out) {
	const void *value = CFDictionaryGetValue(dict, key);
	if (value == NULL || CFGetTypeID(value) != CFNumberGetTypeID()) {
		return 0;
	}
	return CFNumberGetValue((CFNumberRef)value, type, out) ? 1 : 0;
}

static char *awCopyString(CFDictionaryRef dict, CFStringRef key) {
	const void *value = CFDictionaryGetValue(dict, key);
	if (value == NULL || CFGetTypeID(value) != CFStringGetTypeID()) {
		return NULL;
	}
	CFStringRef str = (CFStringRef)value;
	CFIndex size = CFStringGetMaximumSizeForEncoding(CFStringGetLength(str), kCFStringEncodingUTF8) + 1;
	char *buffer = (char *)malloc(size);
	if (buffer == NULL) {
		return NULL;
	}
	if (!CFStringGetCString(str, buffer, size, kCFStringEncodingUTF8)) {
		free(buffer);
		return NULL;
	}
	return buffer;
}

static int awCopyWindows(awWindow **out) {
	*out = NULL;
	CFArrayRef list = CGWindowListCopyWindowInfo(
		kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
		kCGNullWindowID);
	if (list == NULL) {
		return -1;
	}

	CFIndex count = CFArrayGetCount(list);
	awWindow *windows = (awWindow *)calloc(count > 0 ? count : 1, sizeof(awWindow));
	if (windows == NULL) {
		CFRelease(list);
		return -1;
	}

	for (CFIndex i = 0; i < count; i++) {
		const void *entry = CFArrayGetValueAtIndex(list, i);
		if (entry == NULL || CFGetTypeID(entry) != CFDictionaryGetTypeID()) {
			continue;
		}
		CFDictionaryRef dict = (CFDictionaryRef)entry;
		awWindow *w = &windows[i];

		w->hasNumber = awReadNumber(dict, kCGWindowNumber, kCFNumberSInt64Type, &w->number);
		w->hasPID = awReadNumber(dict, kCGWindowOwnerPID, kCFNumberSInt32Type, &w->pid);
		w->hasAlpha = awReadNumber(dict, kCGWindowAlpha, kCFNumberDoubleType, &w->alpha);
		w->hasMemory = awReadNumber(dict, kCGWindowMemoryUsage, kCFNumberSInt64Type, &w->memory);

		const void *bounds = CFDictionaryGetValue(dict, kCGWindowBounds);
		if (bounds != NULL && CFGetTypeID(bounds) == CFDictionaryGetTypeID()) {
			CGRect rect;
			if (CGRectMakeWithDictionaryRepresentation((CFDictionaryRef)bounds, &rect)) {
				w->hasBounds = 1;
				w->x = rect.origin.x;
				w->y = rect.origin.y;
				w->width = rect.size.width;
				w->height = rect.size.height;
			}
		}

		w->ownerName = awCopyString(dict, kCGWindowOwnerName);
		w->name = awCopyString(dict, kCGWindowName);
	}

	CFRelease(list);
	*out = windows;
	return (int)count;
}

static void awFreeWindows(awWindow *windows, int count) {
	if (windows == NULL) {
		return;
	}
	for (int i = 0; i < count; i++) {
		free(windows[i].ownerName);
		free(windows[i].name);
	}
	free(windows);
}
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/window"
)

// Quartz implements window.Platform with NSWorkspace and the Quartz window list.
type Quartz struct{}

func NewQuartz() *Quartz {
	return &Quartz{}
}

func (q *Quartz) Name() string {
	return "quartz"
}

func (q *Quartz) Close() error {
	return nil
}

// Current returns the pid of NSWorkspace's frontmost application.
func (q *Quartz) Current(ctx context.Context) (window.ProcessID, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	pid := int(C.awFrontmostPID())
	if pid <= 0 {
		return 0, false, nil
	}
	return window.ProcessID(pid), true, nil
}

// ListOnScreenWindows copies the on-screen window list, excluding desktop
// elements. Keys the window server omitted stay absent from the result.
func (q *Quartz) ListOnScreenWindows(ctx context.Context) ([]window.Properties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw *C.awWindow
	count := C.awCopyWindows(&raw)
	if count < 0 {
		// Screen recording permission missing or no window server session.
		return nil, errors.New("CGWindowListCopyWindowInfo returned no list")
	}
	defer C.awFreeWindows(raw, count)

	entries := unsafe.Slice(raw, int(count))
	windows := make([]window.Properties, 0, len(entries))
	for i := range entries {
		windows = append(windows, toProperties(&entries[i]))
	}
	return windows, nil
}

func toProperties(w *C.awWindow) window.Properties {
	props := window.Properties{}
	if w.hasNumber != 0 {
		props[window.KeyNumber] = int64(w.number)
	}
	if w.hasPID != 0 {
		props[window.KeyOwnerPID] = int32(w.pid)
	}
	if w.hasAlpha != 0 {
		props[window.KeyAlpha] = float64(w.alpha)
	}
	if w.hasBounds != 0 {
		props[window.KeyBounds] = window.Bounds{
			X:      float64(w.x),
			Y:      float64(w.y),
			Width:  float64(w.width),
			Height: float64(w.height),
		}
	}
	if w.hasMemory != 0 {
		props[window.KeyMemoryUsage] = int64(w.memory)
	}
	if w.ownerName != nil {
		props[window.KeyOwnerName] = C.GoString(w.ownerName)
	}
	if w.name != nil {
		props[window.KeyName] = C.GoString(w.name)
	}
	return props
}
