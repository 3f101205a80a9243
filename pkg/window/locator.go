package window

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Reason tags the outcome of a Locate call.
type Reason int

const (
	Found Reason = iota
	NoFrontmostApplication
	EnumerationUnavailable
	NoQualifyingWindow
)

var reasonNames = map[Reason]string{
	Found:                  "found",
	NoFrontmostApplication: "no_frontmost_application",
	EnumerationUnavailable: "enumeration_unavailable",
	NoQualifyingWindow:     "no_qualifying_window",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Result is the outcome of one sampling of the active window.
type Result struct {
	Reason       Reason      `json:"reason"`
	Window       *Descriptor `json:"window,omitempty"`
	FrontmostPID ProcessID   `json:"frontmost_pid,omitempty"`

	// Verdicts is only filled when the Locator was built WithVerdicts.
	Verdicts []Verdict `json:"verdicts,omitempty"`
}

// Err maps the two failure reasons onto their sentinel errors. Found and
// NoQualifyingWindow are not failures and yield nil.
func (r *Result) Err() error {
	switch r.Reason {
	case NoFrontmostApplication:
		return ErrNoFrontmostApplication
	case EnumerationUnavailable:
		return ErrEnumerationUnavailable
	}
	return nil
}

// Same reports whether r and other point at the same window, or share the same
// non-found reason.
func (r *Result) Same(other *Result) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Reason != other.Reason {
		return false
	}
	if r.Window == nil || other.Window == nil {
		return r.Window == other.Window
	}
	return r.Window.OwnerPID == other.Window.OwnerPID &&
		r.Window.ID == other.Window.ID &&
		r.Window.OwnerName == other.Window.OwnerName &&
		r.Window.Title == other.Window.Title
}

// Locator queries the platform collaborators and feeds their answers to a Resolver.
type Locator struct {
	frontmost    FrontmostProvider
	snapshots    SnapshotProvider
	resolver     *Resolver
	queryTimeout time.Duration
	verdicts     bool
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

func WithResolver(r *Resolver) LocatorOption {
	return func(l *Locator) {
		if r != nil {
			l.resolver = r
		}
	}
}

// WithQueryTimeout bounds each collaborator call. Zero disables the bound.
// Locate reports a timeout as soon as the provider returns; providers are
// expected to honour ctx.
func WithQueryTimeout(d time.Duration) LocatorOption {
	return func(l *Locator) {
		l.queryTimeout = d
	}
}

// WithVerdicts makes Locate attach per-window verdicts to the result.
func WithVerdicts(enabled bool) LocatorOption {
	return func(l *Locator) {
		l.verdicts = enabled
	}
}

func NewLocator(frontmost FrontmostProvider, snapshots SnapshotProvider, opts ...LocatorOption) *Locator {
	l := &Locator{
		frontmost: frontmost,
		snapshots: snapshots,
		resolver:  defaultResolver,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewPlatformLocator builds a Locator around both queries of p.
func NewPlatformLocator(p Platform, opts ...LocatorOption) *Locator {
	return NewLocator(p, p, opts...)
}

// Locate samples the active window once. The returned error is non-nil only
// for EnumerationUnavailable and wraps ErrEnumerationUnavailable; a missing
// frontmost application or an empty selection are reported through
// Result.Reason alone.
func (l *Locator) Locate(ctx context.Context) (*Result, error) {
	pid, ok, err := l.currentFrontmost(ctx)
	if err != nil {
		return &Result{Reason: EnumerationUnavailable},
			&EnumerationError{Op: "frontmost application query", Err: err}
	}
	if !ok {
		return &Result{Reason: NoFrontmostApplication}, nil
	}

	windows, err := l.listWindows(ctx)
	if err != nil {
		return &Result{Reason: EnumerationUnavailable, FrontmostPID: pid},
			&EnumerationError{Op: "window snapshot", Err: err}
	}

	res := &Result{Reason: NoQualifyingWindow, FrontmostPID: pid}
	if d, found := l.resolver.Resolve(pid, windows); found {
		res.Reason = Found
		res.Window = d
	}
	if l.verdicts {
		res.Verdicts = l.resolver.Explain(pid, windows)
	}
	return res, nil
}

func (l *Locator) currentFrontmost(ctx context.Context) (ProcessID, bool, error) {
	if l.frontmost == nil {
		return 0, false, errors.New("no frontmost provider configured")
	}
	ctx, cancel := l.bound(ctx)
	defer cancel()
	pid, ok, err := l.frontmost.Current(ctx)
	if err == nil {
		err = ctx.Err()
	}
	return pid, ok, err
}

func (l *Locator) listWindows(ctx context.Context) ([]Properties, error) {
	if l.snapshots == nil {
		return nil, errors.New("no snapshot provider configured")
	}
	ctx, cancel := l.bound(ctx)
	defer cancel()
	windows, err := l.snapshots.ListOnScreenWindows(ctx)
	if err == nil {
		err = ctx.Err()
	}
	return windows, err
}

func (l *Locator) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.queryTimeout > 0 {
		return context.WithTimeout(ctx, l.queryTimeout)
	}
	return context.WithCancel(ctx)
}
