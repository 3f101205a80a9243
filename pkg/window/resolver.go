package window

// DefaultMinWindowSize is the smallest width and height a window may have and
// still count as the active one. Narrower surfaces are status strips, link
// previews and similar decorations.
const DefaultMinWindowSize = 50

// Verdict records what the resolver decided about one snapshot entry.
type Verdict int

const (
	// VerdictNotReached marks entries after the selected window.
	VerdictNotReached Verdict = iota
	VerdictSelected
	VerdictMalformed
	VerdictForeignOwner
	VerdictTransparent
	VerdictTooSmall
)

var verdictNames = map[Verdict]string{
	VerdictNotReached:   "not_reached",
	VerdictSelected:     "selected",
	VerdictMalformed:    "malformed",
	VerdictForeignOwner: "foreign_owner",
	VerdictTransparent:  "transparent",
	VerdictTooSmall:     "too_small",
}

func (v Verdict) String() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return "unknown"
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Resolver picks the active window out of a front-to-back window snapshot.
// It holds no mutable state and may be shared between goroutines.
type Resolver struct {
	minWindowSize float64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMinWindowSize overrides DefaultMinWindowSize. Non-positive values are ignored.
func WithMinWindowSize(size float64) Option {
	return func(r *Resolver) {
		if size > 0 {
			r.minWindowSize = size
		}
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{minWindowSize: DefaultMinWindowSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MinWindowSize returns the size threshold in effect.
func (r *Resolver) MinWindowSize() float64 {
	if r == nil || r.minWindowSize <= 0 {
		return DefaultMinWindowSize
	}
	return r.minWindowSize
}

// Resolve returns the topmost window owned by frontmost that is neither fully
// transparent nor smaller than the size threshold. Entries with missing or
// malformed metadata are skipped. The boolean is false when nothing qualifies.
func (r *Resolver) Resolve(frontmost ProcessID, windows []Properties) (*Descriptor, bool) {
	for _, props := range windows {
		if d, verdict := r.classify(frontmost, props); verdict == VerdictSelected {
			return d, true
		}
	}
	return nil, false
}

// Explain runs the same selection as Resolve and reports a verdict for every
// entry, in input order.
func (r *Resolver) Explain(frontmost ProcessID, windows []Properties) []Verdict {
	verdicts := make([]Verdict, len(windows))
	for i, props := range windows {
		_, verdicts[i] = r.classify(frontmost, props)
		if verdicts[i] == VerdictSelected {
			break
		}
	}
	return verdicts
}

func (r *Resolver) classify(frontmost ProcessID, props Properties) (*Descriptor, Verdict) {
	d, err := props.Descriptor()
	if err != nil {
		return nil, VerdictMalformed
	}
	if d.OwnerPID != frontmost {
		return nil, VerdictForeignOwner
	}
	// Browsers keep invisible helper windows on screen.
	if d.Alpha == 0 {
		return nil, VerdictTransparent
	}
	minSize := r.MinWindowSize()
	if d.Bounds.Width < minSize || d.Bounds.Height < minSize {
		return nil, VerdictTooSmall
	}
	return d, VerdictSelected
}

var defaultResolver = NewResolver()

// Resolve uses a Resolver with the default size threshold.
func Resolve(frontmost ProcessID, windows []Properties) (*Descriptor, bool) {
	return defaultResolver.Resolve(frontmost, windows)
}
