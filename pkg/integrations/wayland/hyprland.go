package wayland

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/integrations/process"
	"github.com/activewin/activewin/pkg/window"
)

type hyprClient struct {
	Address   string `json:"address"`
	Mapped    bool   `json:"mapped"`
	Hidden    bool   `json:"hidden"`
	At        []int  `json:"at"`
	Size      []int  `json:"size"`
	Workspace struct {
		ID int `json:"id"`
	} `json:"workspace"`
	PID            int    `json:"pid"`
	Class          string `json:"class"`
	Title          string `json:"title"`
	FocusHistoryID int    `json:"focusHistoryID"`
}

type hyprMonitor struct {
	ActiveWorkspace struct {
		ID int `json:"id"`
	} `json:"activeWorkspace"`
	SpecialWorkspace struct {
		ID int `json:"id"`
	} `json:"specialWorkspace"`
}

// Hyprland queries windows through hyprctl.
type Hyprland struct {
	run   runner
	procs *process.Reader
}

func NewHyprland() *Hyprland {
	return &Hyprland{run: execRunner, procs: process.NewReader()}
}

func (h *Hyprland) Name() string {
	return "hyprland"
}

func (h *Hyprland) Close() error {
	return nil
}

// Current returns the pid owning the focused client.
func (h *Hyprland) Current(ctx context.Context) (window.ProcessID, bool, error) {
	out, err := h.run(ctx, "hyprctl", "activewindow", "-j")
	if err != nil {
		return 0, false, err
	}
	return parseHyprlandActive(out)
}

// ListOnScreenWindows returns mapped clients on visible workspaces, most
// recently focused first.
func (h *Hyprland) ListOnScreenWindows(ctx context.Context) ([]window.Properties, error) {
	clients, err := h.run(ctx, "hyprctl", "clients", "-j")
	if err != nil {
		return nil, err
	}
	monitors, err := h.run(ctx, "hyprctl", "monitors", "-j")
	if err != nil {
		return nil, err
	}

	windows, err := parseHyprlandClients(clients, monitors)
	if err != nil {
		return nil, err
	}
	for _, props := range windows {
		h.procs.Enrich(props)
	}
	return windows, nil
}

func parseHyprlandActive(data []byte) (window.ProcessID, bool, error) {
	var active struct {
		PID int `json:"pid"`
	}
	if err := json.Unmarshal(data, &active); err != nil {
		return 0, false, errors.Wrap(err, "decode hyprctl activewindow")
	}
	// hyprctl prints "{}" when nothing has focus.
	if active.PID <= 0 {
		return 0, false, nil
	}
	return window.ProcessID(active.PID), true, nil
}

func parseHyprlandClients(clientsJSON, monitorsJSON []byte) ([]window.Properties, error) {
	var clients []hyprClient
	if err := json.Unmarshal(clientsJSON, &clients); err != nil {
		return nil, errors.Wrap(err, "decode hyprctl clients")
	}
	var monitors []hyprMonitor
	if err := json.Unmarshal(monitorsJSON, &monitors); err != nil {
		return nil, errors.Wrap(err, "decode hyprctl monitors")
	}

	visible := make(map[int]bool)
	for _, m := range monitors {
		visible[m.ActiveWorkspace.ID] = true
		if m.SpecialWorkspace.ID != 0 {
			visible[m.SpecialWorkspace.ID] = true
		}
	}

	var shown []hyprClient
	for _, c := range clients {
		if c.Mapped && !c.Hidden && visible[c.Workspace.ID] {
			shown = append(shown, c)
		}
	}
	sort.SliceStable(shown, func(i, j int) bool {
		return shown[i].FocusHistoryID < shown[j].FocusHistoryID
	})

	windows := make([]window.Properties, 0, len(shown))
	for _, c := range shown {
		props := window.Properties{
			window.KeyAlpha:     1.0,
			window.KeyOwnerName: c.Class,
			window.KeyName:      c.Title,
		}
		if c.PID > 0 {
			props[window.KeyOwnerPID] = c.PID
		}
		if len(c.At) == 2 && len(c.Size) == 2 {
			props[window.KeyBounds] = window.Bounds{
				X:      float64(c.At[0]),
				Y:      float64(c.At[1]),
				Width:  float64(c.Size[0]),
				Height: float64(c.Size[1]),
			}
		}
		windows = append(windows, props)
	}
	return windows, nil
}
