package isa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWideEncodingMatchesScenario(t *testing.T) {
	// spec.md §8 scenario 1: add r1, r2, r3 (wide) encodes to 0x12 0x30.
	ops := []Operand{{Reg: 1}, {Reg: 2}, {Reg: 3}, {}}
	bytes, err := Encode(Shapes[ADD_W], ops)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x30}, bytes)

	decoded, n, err := Decode(Shapes[ADD_W], bytes)
	require.NoError(t, err)
	assert.Equal(t, len(bytes), n)
	assert.Equal(t, ops, decoded)
}

func TestLdiWideEncodingMatchesScenario(t *testing.T) {
	// spec.md §8 scenario 2: ldi_w r1, 0x1234 (variant 0) encodes to
	// 0x10 0x34 0x12.
	ops := []Operand{{Reg: 1}, {Variant: 0}, {Imm16: 0x1234}}
	bytes, err := Encode(Shapes[LDI_W], ops)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x34, 0x12}, bytes)

	decoded, n, err := Decode(Shapes[LDI_W], bytes)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, ops, decoded)
}

func TestRoundTripEveryShape(t *testing.T) {
	for op, shape := range Shapes {
		ops := make([]Operand, len(shape))
		for i, f := range shape {
			switch f {
			case FieldByteReg, FieldWideReg:
				ops[i].Reg = 5
			case FieldVariant:
				ops[i].Variant = 1
			case FieldImmByte:
				ops[i].Imm8 = 0xAB
			case FieldImmWide:
				ops[i].Imm16 = 0xBEEF
			}
		}

		data, err := Encode(shape, ops)
		require.NoErrorf(t, err, "opcode %v", op)
		assert.Equal(t, shape.Size(), len(data), "opcode %v", op)

		decoded, n, err := Decode(shape, data)
		require.NoErrorf(t, err, "opcode %v", op)
		assert.Equal(t, len(data), n, "opcode %v", op)
		assert.Equal(t, ops, decoded, "opcode %v", op)
	}
}

func TestNonZeroFieldIsInvalid(t *testing.T) {
	_, _, err := Decode(Shapes[PUSH_B], []byte{0x51}) // reg=5, low nibble=1 (should be 0)
	assert.ErrorIs(t, err, ErrNonZeroField)
}

func TestEveryMnemonicRoundTripsThroughLookup(t *testing.T) {
	for op, name := range Mnemonics {
		got, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, op, got)
	}
}
