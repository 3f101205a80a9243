package window

import "context"

// FrontmostProvider reports the process that currently holds the foreground.
type FrontmostProvider interface {
	// Current returns false when no application is frontmost. A non-nil error
	// means the window system could not be asked at all.
	Current(ctx context.Context) (ProcessID, bool, error)
}

// SnapshotProvider lists the on-screen windows of the whole desktop.
type SnapshotProvider interface {
	// ListOnScreenWindows returns a one-time snapshot of visible, non-desktop
	// windows ordered front to back.
	ListOnScreenWindows(ctx context.Context) ([]Properties, error)
}

// Platform is a window system integration providing both queries.
type Platform interface {
	FrontmostProvider
	SnapshotProvider

	// Name identifies the integration, e.g. "x11" or "hyprland".
	Name() string

	// Close releases connections held by the integration.
	Close() error
}
