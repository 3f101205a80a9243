package wayland

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/integrations/process"
	"github.com/activewin/activewin/pkg/window"
)

type swayNode struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	PID     int    `json:"pid"`
	AppID   string `json:"app_id"`
	Focused bool   `json:"focused"`
	Visible *bool  `json:"visible"`
	Rect    struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"rect"`
	WindowProperties struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

// Sway queries windows through swaymsg.
type Sway struct {
	run   runner
	procs *process.Reader
}

func NewSway() *Sway {
	return &Sway{run: execRunner, procs: process.NewReader()}
}

func (s *Sway) Name() string {
	return "sway"
}

func (s *Sway) Close() error {
	return nil
}

func (s *Sway) tree(ctx context.Context) (*swayNode, error) {
	out, err := s.run(ctx, "swaymsg", "-t", "get_tree", "--raw")
	if err != nil {
		return nil, err
	}
	var root swayNode
	if err := json.Unmarshal(out, &root); err != nil {
		return nil, errors.Wrap(err, "decode sway tree")
	}
	return &root, nil
}

// Current returns the pid owning the focused view.
func (s *Sway) Current(ctx context.Context) (window.ProcessID, bool, error) {
	root, err := s.tree(ctx)
	if err != nil {
		return 0, false, err
	}
	pid, ok := swayFocusedPID(root)
	return pid, ok, nil
}

// ListOnScreenWindows returns the visible views: the focused view first, then
// floating views, then tiled views in tree order.
func (s *Sway) ListOnScreenWindows(ctx context.Context) ([]window.Properties, error) {
	root, err := s.tree(ctx)
	if err != nil {
		return nil, err
	}
	windows := swayWindows(root)
	for _, props := range windows {
		s.procs.Enrich(props)
	}
	return windows, nil
}

func swayFocusedPID(root *swayNode) (window.ProcessID, bool) {
	var found *swayNode
	walkSway(root, func(n *swayNode, _ bool) {
		if n.Focused && n.PID > 0 {
			found = n
		}
	})
	if found == nil {
		return 0, false
	}
	return window.ProcessID(found.PID), true
}

func swayWindows(root *swayNode) []window.Properties {
	var focused, floating, tiled []*swayNode
	walkSway(root, func(n *swayNode, isFloating bool) {
		if !isView(n) || (n.Visible != nil && !*n.Visible) {
			return
		}
		switch {
		case n.Focused:
			focused = append(focused, n)
		case isFloating:
			floating = append(floating, n)
		default:
			tiled = append(tiled, n)
		}
	})

	ordered := append(append(focused, floating...), tiled...)
	windows := make([]window.Properties, 0, len(ordered))
	for _, n := range ordered {
		owner := n.AppID
		if owner == "" {
			owner = n.WindowProperties.Class
		}
		props := window.Properties{
			window.KeyAlpha:     1.0,
			window.KeyOwnerName: owner,
			window.KeyName:      n.Name,
			window.KeyBounds: window.Bounds{
				X:      float64(n.Rect.X),
				Y:      float64(n.Rect.Y),
				Width:  float64(n.Rect.Width),
				Height: float64(n.Rect.Height),
			},
		}
		if n.PID > 0 {
			props[window.KeyOwnerPID] = n.PID
		}
		if n.ID > 0 && n.ID <= 1<<32-1 {
			props[window.KeyNumber] = uint32(n.ID)
		}
		windows = append(windows, props)
	}
	return windows
}

func isView(n *swayNode) bool {
	return (n.Type == "con" || n.Type == "floating_con") && len(n.Nodes) == 0 && len(n.FloatingNodes) == 0 &&
		(n.PID > 0 || n.AppID != "" || n.WindowProperties.Class != "")
}

// walkSway visits every node below root except the scratchpad output.
func walkSway(root *swayNode, visit func(n *swayNode, floating bool)) {
	var walk func(n *swayNode, floating bool)
	walk = func(n *swayNode, floating bool) {
		if n.Type == "output" && n.Name == "__i3" {
			return
		}
		visit(n, floating)
		for i := range n.Nodes {
			walk(&n.Nodes[i], floating)
		}
		for i := range n.FloatingNodes {
			walk(&n.FloatingNodes[i], true)
		}
	}
	walk(root, false)
}
