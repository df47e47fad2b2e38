package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telda2/image"
	"telda2/isa"
)

func TestAssembleSimpleProgram(t *testing.T) {
	src := `
.global _start
.entry
_start:
	ldi_w a, 0, 0x002a
	add_w a, a, zero
	halt
`
	img, err := Assemble(src, "t.tasm", nil)
	require.NoError(t, err)
	require.NotNil(t, img.Entry)
	assert.Equal(t, uint16(0), *img.Entry)

	require.Len(t, img.Bytes, 4+3+1)
	assert.Equal(t, byte(isa.LDI_W), img.Bytes[0])
	assert.Equal(t, byte(isa.ADD_W), img.Bytes[4])
	assert.Equal(t, byte(isa.HALT), img.Bytes[7])

	require.Len(t, img.Symbols, 1)
	assert.Equal(t, "_start", img.Symbols[0].Name)
	assert.Equal(t, image.Global, img.Symbols[0].Visibility)
}

func TestAssembleJumpToForwardLabel(t *testing.T) {
	src := `
jmp skip
halt
skip:
nop
`
	img, err := Assemble(src, "t.tasm", nil)
	require.NoError(t, err)

	// jmp lowers to ldi_w(variant=1): opcode + wide-reg/variant nibble
	// byte + two-byte immediate = 4 bytes, then halt is 1 byte.
	require.Len(t, img.Bytes, 4+1+1)
	assert.Equal(t, byte(isa.LDI_W), img.Bytes[0])
	skipOffset := uint16(img.Bytes[2]) | uint16(img.Bytes[3])<<8
	assert.Equal(t, uint16(5), skipOffset)
}

func TestAssembleUndefinedLabelChainsUseSites(t *testing.T) {
	src := `
jmp nowhere
jmp nowhere
`
	_, err := Assemble(src, "t.tasm", nil)
	require.Error(t, err)

	var undef *UndefinedLabelError
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, "nowhere", undef.Label)
	assert.Len(t, undef.Uses, 2)
}

func TestAssembleReferenceResolvedByExterns(t *testing.T) {
	src := `
.reference helper
jmp helper
`
	externs := map[string]uint16{"helper": 0x1234}
	img, err := Assemble(src, "t.tasm", externs)
	require.NoError(t, err)

	target := uint16(img.Bytes[2]) | uint16(img.Bytes[3])<<8
	assert.Equal(t, uint16(0x1234), target)

	for _, s := range img.Symbols {
		assert.NotEqual(t, "helper", s.Name, "reference symbols are not written to the image's symbol table")
	}
}

func TestAssembleReferenceWithoutExternResolvesToZero(t *testing.T) {
	src := `
.reference helper
jmp helper
`
	img, err := Assemble(src, "t.tasm", nil)
	require.NoError(t, err)

	target := uint16(img.Bytes[2]) | uint16(img.Bytes[3])<<8
	assert.Equal(t, uint16(0), target)

	for _, s := range img.Symbols {
		assert.NotEqual(t, "helper", s.Name, "reference symbols are not written to the image's symbol table")
	}
}

func TestAssembleEntryMarksCurrentPosition(t *testing.T) {
	src := `
nop
.entry
halt
`
	img, err := Assemble(src, "t.tasm", nil)
	require.NoError(t, err)
	require.NotNil(t, img.Entry)
	assert.Equal(t, uint16(1), *img.Entry)
}

func TestAssembleDoubleEntryIsAnError(t *testing.T) {
	src := `
.entry
nop
.entry
`
	_, err := Assemble(src, "t.tasm", nil)
	require.Error(t, err)

	var asmErr *Error
	require.ErrorAs(t, err, &asmErr)
	assert.Equal(t, DoubleEntry, asmErr.Kind)
}

func TestAssembleDuplicateLabelIsAnError(t *testing.T) {
	src := `
foo:
nop
foo:
nop
`
	_, err := Assemble(src, "t.tasm", nil)
	require.Error(t, err)

	var asmErr *Error
	require.ErrorAs(t, err, &asmErr)
	assert.Equal(t, DuplicateLabel, asmErr.Kind)
}

func TestAssembleByteAndStringDirectives(t *testing.T) {
	src := `
.byte 0x41
.string "BC"
`
	img, err := Assemble(src, "t.tasm", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("ABC"), img.Bytes)
}

func TestAssembleUnknownDirectiveIsAnError(t *testing.T) {
	_, err := Assemble(".bogus foo\n", "t.tasm", nil)
	require.Error(t, err)

	var asmErr *Error
	require.ErrorAs(t, err, &asmErr)
	assert.Equal(t, UnknownDirective, asmErr.Kind)
}
