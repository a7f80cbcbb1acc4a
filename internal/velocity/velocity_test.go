package velocity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBoundsSuppressOutsideRange(t *testing.T) {
	f := NewDefault()
	assert.True(t, f.Suppress(1.0))
	assert.True(t, f.Suppress(40.0))
	assert.False(t, f.Suppress(10.0))
}

func TestClosedIntervalIncludesEndpoints(t *testing.T) {
	f := New(5, 10)
	assert.False(t, f.Suppress(5))
	assert.False(t, f.Suppress(10))
	assert.True(t, f.Suppress(4.999))
	assert.True(t, f.Suppress(10.001))
}

func TestInactiveFilterNeverSuppresses(t *testing.T) {
	var f Filter
	assert.False(t, f.Suppress(1e9))
	assert.False(t, f.Suppress(-1e9))
}
