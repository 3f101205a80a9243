package wayland

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/window"
)

// runner executes a compositor IPC command and returns its stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, errors.Wrapf(err, "run %s", name)
	}
	return out, nil
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// DetectCompositor names the running compositor from the IPC environment
// variables it exports, or returns "unknown".
func DetectCompositor() string {
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return "hyprland"
	}
	if os.Getenv("SWAYSOCK") != "" {
		return "sway"
	}
	return "unknown"
}

// NewPlatform returns the integration for the running compositor. Compositors
// that expose no window list report window.ErrEnumerationUnavailable.
func NewPlatform() (window.Platform, error) {
	switch compositor := DetectCompositor(); compositor {
	case "hyprland":
		if !commandExists("hyprctl") {
			return nil, errors.Wrap(window.ErrEnumerationUnavailable, "hyprctl not found in PATH")
		}
		return NewHyprland(), nil
	case "sway":
		if !commandExists("swaymsg") {
			return nil, errors.Wrap(window.ErrEnumerationUnavailable, "swaymsg not found in PATH")
		}
		return NewSway(), nil
	default:
		return nil, errors.Wrapf(window.ErrEnumerationUnavailable, "unsupported wayland compositor %q", compositor)
	}
}
