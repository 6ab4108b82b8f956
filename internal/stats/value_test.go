package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueStates(t *testing.T) {
	v := Present(0)
	assert.True(t, v.Ok(), "a computed zero is still a value")
	require.NotNil(t, v.Ptr())
	assert.Zero(t, *v.Ptr())

	a := Absent()
	assert.False(t, a.Ok())
	assert.Nil(t, a.Ptr())

	inv := Invalid("bad window")
	assert.False(t, inv.Ok())
	assert.Nil(t, inv.Ptr())
	assert.Equal(t, "bad window", inv.Reason)
}

func TestValueRound(t *testing.T) {
	assert.InDelta(t, 1.333, Present(4.0/3.0).Round(3).V, 1e-9)
	assert.InDelta(t, 1.67, Present(5.0/3.0).Round(2).V, 1e-9)

	// Non-present values pass through untouched.
	assert.Equal(t, Absent(), Absent().Round(3))
	assert.Equal(t, Invalid("x"), Invalid("x").Round(3))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "present", StatusPresent.String())
	assert.Equal(t, "absent", StatusAbsent.String())
	assert.Equal(t, "invalid", StatusInvalid.String())
}
