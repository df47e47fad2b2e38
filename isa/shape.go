package isa

import (
	"fmt"

	"telda2/nibble"
)

// A Field names the kind of one operand slot. Nibble-wide fields (every
// kind but ImmByte/ImmWide) pack two to a byte, high nibble first, in the
// order they appear in a Shape; ImmByte/ImmWide fields are always whole
// bytes trailing the nibble fields (spec.md §4.1's operand shapes never
// interleave the two).
type Field int

const (
	FieldByteReg Field = iota // a byte-register selector nibble
	FieldWideReg              // a wide-register selector nibble
	FieldZero                 // a nibble that MUST be zero on decode
	FieldVariant              // a small-integer tag nibble (e.g. LDI_W's mode)
	FieldImmByte              // a raw 8-bit immediate, one whole byte
	FieldImmWide              // a little-endian 16-bit immediate, two bytes
)

func (f Field) isNibble() bool {
	return f == FieldByteReg || f == FieldWideReg || f == FieldZero || f == FieldVariant
}

// A Shape lists the operand fields of one opcode, in encoding order. All
// Shapes used by telda2's real opcodes place their nibble fields before
// any immediate-byte fields, and always have an even count of nibble
// fields, matching every handler in
// original_source/src/blf4/isa/handlers.rs.
type Shape []Field

// Size returns the number of bytes this shape occupies after the opcode
// byte.
func (s Shape) Size() int {
	n := 0
	nibbles := 0
	for _, f := range s {
		if f.isNibble() {
			nibbles++
			continue
		}
		if f == FieldImmByte {
			n++
		} else {
			n += 2
		}
	}
	return n + (nibbles+1)/2
}

// Shapes, one per assigned opcode, grounded field-by-field on each
// handler's actual arg_pair/arg_imm_byte/arg_imm_wide calls in
// original_source/src/blf4/isa/handlers.rs.
var Shapes = map[Opcode]Shape{
	NULL: {}, HALT: {}, NOP: {}, SYSCALL: {}, CTF: {}, RETH: {}, USR: {}, VMON: {}, VMOFF: {},

	PSTORE: {FieldByteReg, FieldWideReg, FieldByteReg, FieldZero},
	PLOAD:  {FieldByteReg, FieldByteReg, FieldWideReg, FieldZero},

	PUSH_B: {FieldByteReg, FieldZero},
	PUSH_W: {FieldWideReg, FieldZero},
	POP_B:  {FieldByteReg, FieldZero},
	POP_W:  {FieldWideReg, FieldZero},
	CALL:   {FieldImmWide},
	RET:    {FieldImmByte},

	STORE_BI: {FieldWideReg, FieldByteReg, FieldImmWide},
	STORE_WI: {FieldWideReg, FieldWideReg, FieldImmWide},
	STORE_BR: {FieldWideReg, FieldWideReg, FieldByteReg, FieldZero},
	STORE_WR: {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},
	LOAD_BI:  {FieldByteReg, FieldWideReg, FieldImmWide},
	LOAD_WI:  {FieldWideReg, FieldWideReg, FieldImmWide},
	LOAD_BR:  {FieldByteReg, FieldWideReg, FieldWideReg, FieldZero},
	LOAD_WR:  {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},

	JEZ: {FieldImmWide}, JNZ: {FieldImmWide}, JLT: {FieldImmWide}, JLE: {FieldImmWide},
	JGT: {FieldImmWide}, JGE: {FieldImmWide}, JO: {FieldImmWide}, JNO: {FieldImmWide},
	JA: {FieldImmWide}, JAE: {FieldImmWide}, JB: {FieldImmWide}, JBE: {FieldImmWide},

	LDI_B: {FieldByteReg, FieldZero, FieldImmByte},
	LDI_W: {FieldWideReg, FieldVariant, FieldImmWide},

	ADD_B: {FieldByteReg, FieldByteReg, FieldByteReg, FieldZero},
	ADD_W: {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},
	SUB_B: {FieldByteReg, FieldByteReg, FieldByteReg, FieldZero},
	SUB_W: {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},
	AND_B: {FieldByteReg, FieldByteReg, FieldByteReg, FieldZero},
	AND_W: {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},
	OR_B:  {FieldByteReg, FieldByteReg, FieldByteReg, FieldZero},
	OR_W:  {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},
	XOR_B: {FieldByteReg, FieldByteReg, FieldByteReg, FieldZero},
	XOR_W: {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},
	SHL_B: {FieldByteReg, FieldByteReg, FieldByteReg, FieldZero},
	SHL_W: {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},
	ASR_B: {FieldByteReg, FieldByteReg, FieldByteReg, FieldZero},
	ASR_W: {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},
	LSR_B: {FieldByteReg, FieldByteReg, FieldByteReg, FieldZero},
	LSR_W: {FieldWideReg, FieldWideReg, FieldWideReg, FieldZero},

	MUL_B: {FieldByteReg, FieldByteReg, FieldByteReg, FieldByteReg},
	MUL_W: {FieldWideReg, FieldWideReg, FieldWideReg, FieldWideReg},
	DIV_B: {FieldByteReg, FieldByteReg, FieldByteReg, FieldByteReg},
	DIV_W: {FieldWideReg, FieldWideReg, FieldWideReg, FieldWideReg},
}

// Operand is one decoded or to-be-encoded operand value. Exactly one of
// its fields is meaningful, selected by the corresponding Shape entry.
type Operand struct {
	Reg     nibble.Nibble // FieldByteReg / FieldWideReg selector
	Variant nibble.Nibble // FieldVariant tag
	Imm8    byte          // FieldImmByte
	Imm16   uint16        // FieldImmWide
}

// ErrNonZeroField reports a decode where a FieldZero slot held a non-zero
// nibble, which spec.md §4.1 requires to be an Invalid trap.
var ErrNonZeroField = fmt.Errorf("isa: zero field is non-zero")

// Encode serializes operands according to shape, the exact inverse of
// Decode. len(operands) must equal len(shape).
func Encode(shape Shape, operands []Operand) ([]byte, error) {
	if len(operands) != len(shape) {
		return nil, fmt.Errorf("isa: shape wants %d operands, got %d", len(shape), len(operands))
	}

	var out []byte
	var pendingNibble *nibble.Nibble

	emitNibble := func(n nibble.Nibble) {
		if pendingNibble == nil {
			pendingNibble = &n
			return
		}
		out = append(out, nibble.Pack(*pendingNibble, n))
		pendingNibble = nil
	}

	for i, f := range shape {
		op := operands[i]
		switch f {
		case FieldByteReg, FieldWideReg:
			emitNibble(op.Reg)
		case FieldZero:
			emitNibble(0)
		case FieldVariant:
			emitNibble(op.Variant)
		case FieldImmByte:
			out = append(out, op.Imm8)
		case FieldImmWide:
			lo, hi := nibble.SplitWord(op.Imm16)
			out = append(out, lo, hi)
		}
	}
	if pendingNibble != nil {
		return nil, fmt.Errorf("isa: shape has an odd number of nibble fields")
	}
	return out, nil
}

// Decode parses operands out of data according to shape, the exact
// inverse of Encode. It returns the operands and the number of bytes of
// data consumed.
func Decode(shape Shape, data []byte) ([]Operand, int, error) {
	operands := make([]Operand, len(shape))
	pos := 0
	var pendingHi *nibble.Nibble

	nextNibble := func() (nibble.Nibble, error) {
		if pendingHi != nil {
			n := *pendingHi
			pendingHi = nil
			return n, nil
		}
		if pos >= len(data) {
			return 0, fmt.Errorf("isa: operand byte missing")
		}
		hi, lo := nibble.Pair(data[pos])
		pos++
		pendingHi = &lo
		return hi, nil
	}

	for i, f := range shape {
		switch f {
		case FieldByteReg, FieldWideReg, FieldVariant:
			n, err := nextNibble()
			if err != nil {
				return nil, 0, err
			}
			if f == FieldVariant {
				operands[i].Variant = n
			} else {
				operands[i].Reg = n
			}
		case FieldZero:
			n, err := nextNibble()
			if err != nil {
				return nil, 0, err
			}
			if n != 0 {
				return nil, 0, ErrNonZeroField
			}
		case FieldImmByte:
			if pos >= len(data) {
				return nil, 0, fmt.Errorf("isa: immediate byte missing")
			}
			operands[i].Imm8 = data[pos]
			pos++
		case FieldImmWide:
			if pos+2 > len(data) {
				return nil, 0, fmt.Errorf("isa: immediate word missing")
			}
			operands[i].Imm16 = nibble.Word(data[pos], data[pos+1])
			pos += 2
		}
	}
	return operands, pos, nil
}
