package x11

import (
	"context"
	"encoding/binary"
	"strings"

	"github.com/jezek/xgb/xproto"
)

// decodeUint32s splits a format-32 property value into its items.
func decodeUint32s(data []byte) []uint32 {
	values := make([]uint32, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		values = append(values, binary.LittleEndian.Uint32(data[i:]))
	}
	return values
}

// topmostFirst reverses a bottom-to-top stacking list, dropping null ids.
func topmostFirst(ids []uint32) []xproto.Window {
	windows := make([]xproto.Window, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] != 0 {
			windows = append(windows, xproto.Window(ids[i]))
		}
	}
	return windows
}

// isClientFocus reports whether an input focus value names a real window.
// None, PointerRoot and the root window mean no X client has focus.
func isClientFocus(focus, root xproto.Window) bool {
	return focus != xproto.InputFocusNone &&
		focus != xproto.InputFocusPointerRoot &&
		focus != root
}

// opacityToAlpha maps _NET_WM_WINDOW_OPACITY onto [0,1].
func opacityToAlpha(v uint32) float64 {
	return float64(v) / float64(^uint32(0))
}

func containsID(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// parseWMClass splits the two NUL terminated strings of WM_CLASS.
func parseWMClass(data []byte) (instance, class string) {
	parts := strings.Split(trimNull(data), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}

func trimNull(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}

// roundTrip runs fn on its own goroutine and gives up when ctx is done.
// xgb replies block without a deadline, so a stalled X server must not
// hold the caller past ctx.
func roundTrip[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type reply struct {
		value T
		err   error
	}
	ch := make(chan reply, 1)
	go func() {
		v, err := fn()
		ch <- reply{v, err}
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
