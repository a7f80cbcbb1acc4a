// Package redact implements the three redaction primitives spec §4.4 and
// §4.6 describe: the identifier redactor (redact-all / include-list,
// random 32-bit hex replacement), the partII field-name stripper
// (pre-order JSON tree walk), and the vehicle-size zeroing helper.
package redact

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"

	"github.com/usdot-its/ppm/internal/config"
)

// IDRedactor replaces a vehicle identifier either unconditionally
// (redact-all) or only for ids present in an inclusion set
// (include-list). Not safe for concurrent use — spec §5 gives each
// worker its own instance with its own PRNG.
type IDRedactor struct {
	active     bool
	inclusions bool
	included   map[string]struct{}
	rng        *mrand.Rand
}

// NewIDRedactor builds a redactor from the privacy ConfigMap. Per
// spec §4.4: `privacy.redaction.id` gates whether redaction runs at
// all; `privacy.redaction.id.inclusions = ON` switches to include-list
// mode and `privacy.redaction.id.included` seeds the initial set.
func NewIDRedactor(cfg config.ConfigMap) *IDRedactor {
	r := &IDRedactor{
		active: cfg.Bool("privacy.redaction.id"),
		rng:    newSeededRNG(),
	}
	if cfg.Bool("privacy.redaction.id.inclusions") {
		r.inclusions = true
		r.included = make(map[string]struct{})
		for _, id := range cfg.CommaList("privacy.redaction.id.included") {
			r.included[id] = struct{}{}
		}
	}
	return r
}

// newSeededRNG seeds a per-instance math/rand source from crypto/rand,
// matching spec §4.4's "per-instance PRNG seeded at construction" and
// the teacher's use of crypto/rand for randomness elsewhere in the repo.
func newSeededRNG() *mrand.Rand {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; fall back to a fixed seed rather than panicking, since
		// redaction still needs to produce *a* value.
		return mrand.New(mrand.NewSource(1))
	}
	return mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}

// Active reports whether id redaction should run at all.
func (r *IDRedactor) Active() bool { return r.active }

// HasInclusions reports whether the redactor is in include-list mode.
func (r *IDRedactor) HasInclusions() bool { return r.inclusions }

// NumInclusions returns the size of the inclusion set (0 in redact-all
// mode, or in include-list mode with an empty set).
func (r *IDRedactor) NumInclusions() int { return len(r.included) }

// AddInclusion adds id to the inclusion set, switching from redact-all
// to include-list if this is the first inclusion added.
func (r *IDRedactor) AddInclusion(id string) {
	if !r.inclusions {
		r.inclusions = true
		r.included = make(map[string]struct{})
	}
	r.included[id] = struct{}{}
}

// RemoveInclusion removes id from the inclusion set, if present. Has no
// effect in redact-all mode.
func (r *IDRedactor) RemoveInclusion(id string) {
	delete(r.included, id)
}

// ClearInclusions empties the inclusion set. In include-list mode this
// leaves the redactor in include-list mode with nothing to redact,
// matching spec §4.4 exactly — it does not revert to redact-all.
func (r *IDRedactor) ClearInclusions() {
	if r.inclusions {
		r.included = make(map[string]struct{})
	}
}

// ShouldRedact reports whether id should be replaced: always true in
// redact-all mode, only for set members in include-list mode.
func (r *IDRedactor) ShouldRedact(id string) bool {
	if !r.active {
		return false
	}
	if !r.inclusions {
		return true
	}
	_, ok := r.included[id]
	return ok
}

// RandomID returns a uniformly random 32-bit value as lower-case hex,
// zero-padded to 8 characters.
func (r *IDRedactor) RandomID() string {
	return fmt.Sprintf("%08x", r.rng.Uint32())
}

// Redact returns id unchanged if ShouldRedact is false, otherwise a
// fresh RandomID.
func (r *IDRedactor) Redact(id string) string {
	if !r.ShouldRedact(id) {
		return id
	}
	return r.RandomID()
}
