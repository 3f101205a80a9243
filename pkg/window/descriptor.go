package window

import (
	"math"

	"github.com/pkg/errors"
)

// ProcessID identifies the process that owns a window.
type ProcessID int32

// Bounds is a window rectangle in screen coordinates.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Descriptor is a validated snapshot of one on-screen window.
type Descriptor struct {
	ID          uint32    `json:"id,omitempty"`
	OwnerPID    ProcessID `json:"owner_pid"`
	OwnerName   string    `json:"owner_name"`
	Title       string    `json:"title,omitempty"`
	Alpha       float64   `json:"alpha"`
	Bounds      Bounds    `json:"bounds"`
	MemoryUsage int64     `json:"memory_usage,omitempty"`
}

// Properties is the raw metadata of one window as reported by a platform
// collaborator, before any validation.
type Properties map[string]any

// Keys understood by Properties.Descriptor.
const (
	KeyNumber      = "number"
	KeyOwnerPID    = "owner_pid"
	KeyOwnerName   = "owner_name"
	KeyName        = "name"
	KeyAlpha       = "alpha"
	KeyBounds      = "bounds"
	KeyMemoryUsage = "memory_usage"
)

// Descriptor parses p. Owner pid, alpha and bounds are required; optional
// fields that are absent or of the wrong type are left empty.
func (p Properties) Descriptor() (*Descriptor, error) {
	raw, ok := p[KeyOwnerPID]
	if !ok || raw == nil {
		return nil, errors.Wrap(ErrMissingField, KeyOwnerPID)
	}
	pid, ok := toInt64(raw)
	if !ok || pid <= 0 || pid > math.MaxInt32 {
		return nil, errors.Wrapf(ErrInvalidField, "%s: %v", KeyOwnerPID, raw)
	}

	raw, ok = p[KeyAlpha]
	if !ok || raw == nil {
		return nil, errors.Wrap(ErrMissingField, KeyAlpha)
	}
	alpha, ok := toFloat64(raw)
	if !ok || math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return nil, errors.Wrapf(ErrInvalidField, "%s: %v", KeyAlpha, raw)
	}

	raw, ok = p[KeyBounds]
	if !ok || raw == nil {
		return nil, errors.Wrap(ErrMissingField, KeyBounds)
	}
	bounds, err := toBounds(raw)
	if err != nil {
		return nil, errors.Wrap(err, KeyBounds)
	}

	d := &Descriptor{
		OwnerPID: ProcessID(pid),
		Alpha:    alpha,
		Bounds:   bounds,
	}
	if id, ok := toInt64(p[KeyNumber]); ok && id >= 0 && id <= math.MaxUint32 {
		d.ID = uint32(id)
	}
	if name, ok := p[KeyOwnerName].(string); ok {
		d.OwnerName = name
	}
	if title, ok := p[KeyName].(string); ok {
		d.Title = title
	}
	if mem, ok := toInt64(p[KeyMemoryUsage]); ok && mem >= 0 {
		d.MemoryUsage = mem
	}
	return d, nil
}

func toBounds(v any) (Bounds, error) {
	var b Bounds
	switch t := v.(type) {
	case Bounds:
		b = t
	case *Bounds:
		if t == nil {
			return b, ErrMissingField
		}
		b = *t
	case map[string]any:
		for _, field := range []struct {
			key string
			dst *float64
		}{
			{"X", &b.X}, {"Y", &b.Y}, {"Width", &b.Width}, {"Height", &b.Height},
		} {
			raw, ok := t[field.key]
			if !ok {
				return b, errors.Wrap(ErrMissingField, field.key)
			}
			f, ok := toFloat64(raw)
			if !ok {
				return b, errors.Wrapf(ErrInvalidField, "%s: %v", field.key, raw)
			}
			*field.dst = f
		}
	case map[string]float64:
		for _, key := range []string{"X", "Y", "Width", "Height"} {
			if _, ok := t[key]; !ok {
				return b, errors.Wrap(ErrMissingField, key)
			}
		}
		b = Bounds{X: t["X"], Y: t["Y"], Width: t["Width"], Height: t["Height"]}
	default:
		return b, errors.Wrapf(ErrInvalidField, "unsupported type %T", v)
	}

	for _, f := range []float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return b, errors.Wrap(ErrInvalidField, "non-finite coordinate")
		}
	}
	if b.Width < 0 || b.Height < 0 {
		return b, errors.Wrapf(ErrInvalidField, "negative size %vx%v", b.Width, b.Height)
	}
	return b, nil
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// toInt64 accepts any integer type and floats that hold a whole number.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), n <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float32, float64:
		f, _ := toFloat64(n)
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > 1<<53 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}
