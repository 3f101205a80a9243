package detector

import (
	"os"

	"github.com/activewin/activewin/pkg/window"
)

// New returns the window system integration for the current session.
// It fails with window.ErrEnumerationUnavailable when none applies.
func New() (window.Platform, error) {
	return newPlatform(DetectDisplayServer())
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
