package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	f := Word{Zero: true, Carry: true, Trap: true, VirtualMode: true}
	got := Unpack(f.Pack())
	assert.Equal(t, f, got)
}

func TestSetArith(t *testing.T) {
	var f Word
	f.SetArith(false, true, true, false)
	assert.False(t, f.Zero)
	assert.True(t, f.Sign)
	assert.True(t, f.Carry)
	assert.False(t, f.Overflow)
}
