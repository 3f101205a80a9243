//go:build linux

package detector

import (
	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/integrations/wayland"
	"github.com/activewin/activewin/pkg/integrations/x11"
	"github.com/activewin/activewin/pkg/window"
)

func newPlatform(displayServer string) (window.Platform, error) {
	switch displayServer {
	case "wayland":
		// XWayland only sees X clients and is no substitute for compositor IPC.
		return wayland.NewPlatform()
	case "x11":
		xc, err := x11.NewClient()
		if err != nil {
			return nil, &window.EnumerationError{Op: "x11", Err: err}
		}
		return xc, nil
	}
	return nil, errors.Wrap(window.ErrEnumerationUnavailable, "no display server detected")
}
