package x11

import (
	"context"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/integrations/process"
	"github.com/activewin/activewin/pkg/window"
)

// maxListLength is the number of 32-bit items requested for list properties.
const maxListLength = 4096

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"_NET_WM_WINDOW_OPACITY",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DESKTOP",
	"UTF8_STRING",
}

// Client implements window.Platform on top of an EWMH compliant X11 window manager.
type Client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
	procs *process.Reader
}

// NewClient connects to the X server named by $DISPLAY.
func NewClient() (*Client, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "connect to X server")
	}

	c := &Client{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
		procs: process.NewReader(),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "intern atom %s", name)
		}
		c.atoms[name] = reply.Atom
	}

	return c, nil
}

// Name returns "x11".
func (c *Client) Name() string {
	return "x11"
}

// Close disconnects from the X server.
func (c *Client) Close() error {
	c.conn.Close()
	return nil
}

type frontmost struct {
	pid window.ProcessID
	ok  bool
}

// Current returns the pid of the application owning the active window.
func (c *Client) Current(ctx context.Context) (window.ProcessID, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	f, err := roundTrip(ctx, func() (frontmost, error) {
		pid, ok, err := c.current()
		return frontmost{pid, ok}, err
	})
	return f.pid, f.ok, err
}

func (c *Client) current() (window.ProcessID, bool, error) {
	active, err := c.activeWindow()
	if err != nil {
		return 0, false, err
	}
	if active == 0 || active == c.root {
		return 0, false, nil
	}

	pid, ok := c.windowPID(active)
	if !ok {
		return 0, false, nil
	}
	return pid, true, nil
}

// ListOnScreenWindows returns the viewable, non-desktop client windows,
// topmost first.
func (c *Client) ListOnScreenWindows(ctx context.Context) ([]window.Properties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return roundTrip(ctx, func() ([]window.Properties, error) {
		return c.listWindows(ctx)
	})
}

func (c *Client) listWindows(ctx context.Context) ([]window.Properties, error) {
	stacking, err := c.clientList()
	if err != nil {
		return nil, err
	}

	result := make([]window.Properties, 0, len(stacking))
	for _, w := range stacking {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attrs, err := xproto.GetWindowAttributes(c.conn, w).Reply()
		if err != nil || attrs.MapState != xproto.MapStateViewable {
			// Windows may disappear between listing and querying them.
			continue
		}
		if c.isDesktop(w) {
			continue
		}

		result = append(result, c.describe(w))
	}
	return result, nil
}

func (c *Client) describe(w xproto.Window) window.Properties {
	props := window.Properties{
		window.KeyNumber: uint32(w),
		window.KeyAlpha:  c.opacity(w),
	}

	if pid, ok := c.windowPID(w); ok {
		props[window.KeyOwnerPID] = pid
	}
	if bounds, ok := c.bounds(w); ok {
		props[window.KeyBounds] = bounds
	}
	if _, class := c.windowClass(w); class != "" {
		props[window.KeyOwnerName] = class
	}
	if title := c.windowName(w); title != "" {
		props[window.KeyName] = title
	}

	c.procs.Enrich(props)
	return props
}

func (c *Client) getProperty(w xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, w, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (c *Client) activeWindow() (xproto.Window, error) {
	data, err := c.getProperty(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil {
		return 0, errors.Wrap(err, "read _NET_ACTIVE_WINDOW")
	}
	if ids := decodeUint32s(data); len(ids) > 0 && ids[0] != 0 {
		return xproto.Window(ids[0]), nil
	}

	// Window managers without EWMH support only expose the input focus.
	focus, err := xproto.GetInputFocus(c.conn).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "query input focus")
	}
	if !isClientFocus(focus.Focus, c.root) {
		return 0, nil
	}
	return c.topLevelParent(focus.Focus), nil
}

func (c *Client) topLevelParent(w xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(c.conn, w).Reply()
		if err != nil || reply.Parent == c.root || reply.Parent == 0 {
			return w
		}
		w = reply.Parent
	}
}

func (c *Client) clientList() ([]xproto.Window, error) {
	data, err := c.getProperty(c.root, c.atoms["_NET_CLIENT_LIST_STACKING"], xproto.AtomWindow, maxListLength)
	if err != nil {
		return nil, errors.Wrap(err, "read _NET_CLIENT_LIST_STACKING")
	}
	ids := decodeUint32s(data)
	if len(ids) == 0 {
		data, err = c.getProperty(c.root, c.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, maxListLength)
		if err != nil {
			return nil, errors.Wrap(err, "read _NET_CLIENT_LIST")
		}
		ids = decodeUint32s(data)
	}
	return topmostFirst(ids), nil
}

func (c *Client) windowPID(w xproto.Window) (window.ProcessID, bool) {
	data, err := c.getProperty(w, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil {
		return 0, false
	}
	values := decodeUint32s(data)
	if len(values) == 0 || values[0] == 0 || values[0] > 1<<31-1 {
		return 0, false
	}
	return window.ProcessID(values[0]), true
}

func (c *Client) opacity(w xproto.Window) float64 {
	data, err := c.getProperty(w, c.atoms["_NET_WM_WINDOW_OPACITY"], xproto.AtomCardinal, 1)
	if err != nil {
		return 1
	}
	values := decodeUint32s(data)
	if len(values) == 0 {
		return 1
	}
	return opacityToAlpha(values[0])
}

func (c *Client) isDesktop(w xproto.Window) bool {
	data, err := c.getProperty(w, c.atoms["_NET_WM_WINDOW_TYPE"], xproto.AtomAtom, 32)
	if err != nil {
		return false
	}
	return containsID(decodeUint32s(data), uint32(c.atoms["_NET_WM_WINDOW_TYPE_DESKTOP"]))
}

func (c *Client) bounds(w xproto.Window) (window.Bounds, bool) {
	geom, err := xproto.GetGeometry(c.conn, xproto.Drawable(w)).Reply()
	if err != nil {
		return window.Bounds{}, false
	}
	pos, err := xproto.TranslateCoordinates(c.conn, w, c.root, 0, 0).Reply()
	if err != nil {
		return window.Bounds{}, false
	}
	return window.Bounds{
		X:      float64(pos.DstX),
		Y:      float64(pos.DstY),
		Width:  float64(geom.Width),
		Height: float64(geom.Height),
	}, true
}

func (c *Client) windowClass(w xproto.Window) (instance, class string) {
	data, err := c.getProperty(w, xproto.AtomWmClass, xproto.AtomString, 256)
	if err != nil {
		return "", ""
	}
	return parseWMClass(data)
}

func (c *Client) windowName(w xproto.Window) string {
	data, err := c.getProperty(w, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return trimNull(data)
	}
	data, err = c.getProperty(w, xproto.AtomWmName, xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return trimNull(data)
	}
	return ""
}
