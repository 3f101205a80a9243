//go:build darwin

package detector

import (
	"github.com/activewin/activewin/pkg/integrations/darwin"
	"github.com/activewin/activewin/pkg/window"
)

func newPlatform(string) (window.Platform, error) {
	return darwin.NewQuartz(), nil
}
