package memsink

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/canzero/sigdag/value"
)

func TestPublishAndGet(t *testing.T) {
	s := New()
	handle, err := s.Resolve("Speed")
	assert.NoError(t, err)

	assert.NoError(t, s.Publish(handle, value.FloatValue(42.0)))

	v, ok := s.Get("Speed")
	assert.True(t, ok)
	f, _ := v.AsFloat64()
	assert.Equal(t, 42.0, f)

	assert.Equal(t, 1, len(s.Log()))
}
