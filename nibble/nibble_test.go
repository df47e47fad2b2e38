package nibble

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairAndPack(t *testing.T) {
	hi, lo := Pair(0x12)
	assert.Equal(t, Nibble(0x1), hi)
	assert.Equal(t, Nibble(0x2), lo)
	assert.Equal(t, byte(0x12), Pack(hi, lo))
}

func TestPackMasksHighBits(t *testing.T) {
	// only the low 4 bits of each argument should ever be used
	assert.Equal(t, byte(0x34), Pack(Nibble(0xf3), Nibble(0xf4)))
}

func TestWordRoundTrip(t *testing.T) {
	w := Word(0x34, 0x12)
	assert.Equal(t, uint16(0x1234), w)

	lo, hi := SplitWord(w)
	assert.Equal(t, byte(0x34), lo)
	assert.Equal(t, byte(0x12), hi)
}
