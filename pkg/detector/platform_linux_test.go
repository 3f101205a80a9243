//go:build linux

package detector

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/window"
)

func TestNewPlatformUnsupportedCompositor(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	t.Setenv("SWAYSOCK", "")
	t.Setenv("DISPLAY", ":0")

	platform, err := newPlatform("wayland")
	if err == nil {
		platform.Close()
		t.Fatalf("newPlatform(wayland) = %s, want an error for an unknown compositor", platform.Name())
	}
	if !errors.Is(err, window.ErrEnumerationUnavailable) {
		t.Errorf("newPlatform(wayland) error = %v, want ErrEnumerationUnavailable", err)
	}
}

func TestNewPlatformUnknownDisplayServer(t *testing.T) {
	_, err := newPlatform("unknown")
	if !errors.Is(err, window.ErrEnumerationUnavailable) {
		t.Errorf("newPlatform(unknown) error = %v, want ErrEnumerationUnavailable", err)
	}
}
