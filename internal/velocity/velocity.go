// Package velocity implements the closed-interval speed filter: messages
// reporting a speed outside [Min,Max] are flagged for suppression.
package velocity

// Defaults match spec §4.5: 5 mph and 80 mph, in meters/second.
const (
	DefaultMinMPS = 2.2352
	DefaultMaxMPS = 35.7632
)

// Filter is a closed-interval [Min,Max] suppression predicate. The zero
// value is inactive (Active is false) and Suppress always reports false.
type Filter struct {
	Active bool
	Min    float64
	Max    float64
}

// New constructs an active filter with the given bounds.
func New(min, max float64) Filter {
	return Filter{Active: true, Min: min, Max: max}
}

// NewDefault constructs an active filter using the spec defaults.
func NewDefault() Filter {
	return New(DefaultMinMPS, DefaultMaxMPS)
}

// Suppress reports whether v falls outside the closed interval. An
// inactive filter never suppresses.
func (f Filter) Suppress(v float64) bool {
	if !f.Active {
		return false
	}
	return v < f.Min || v > f.Max
}

// Retain is the complement of Suppress.
func (f Filter) Retain(v float64) bool { return !f.Suppress(v) }
