//go:build !linux && !darwin

package detector

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/activewin/activewin/pkg/window"
)

func newPlatform(string) (window.Platform, error) {
	return nil, errors.Wrapf(window.ErrEnumerationUnavailable, "no window integration for %s", runtime.GOOS)
}
