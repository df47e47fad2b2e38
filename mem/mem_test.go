package mem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhysicalReadWriteRoundTrip(t *testing.T) {
	m := New()
	require.NoError(t, m.PhysicalWrite(0x1234, 0xab))
	v, err := m.PhysicalRead(0x1234)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), v)
}

func TestPhysicalOutOfRange(t *testing.T) {
	m := New()
	_, err := m.PhysicalRead(PhysicalSize)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestNonVirtualUsesBaseFrame(t *testing.T) {
	m := New()
	ctx := TranslateContext{Base: 0x07}
	require.NoError(t, m.Write(0x0010, 0x42, ctx))

	v, err := m.PhysicalRead(0x070010)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), v)

	got, err := m.Read(0x0010, ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), got)
}

func TestWideAccessIsTwoBytesLittleEndian(t *testing.T) {
	m := New()
	ctx := TranslateContext{Base: 0x01}
	require.NoError(t, m.WriteWide(0x0100, 0xbeef, ctx))

	lo, _ := m.PhysicalRead(0x010100)
	hi, _ := m.PhysicalRead(0x010101)
	assert.Equal(t, byte(0xef), lo)
	assert.Equal(t, byte(0xbe), hi)

	got, err := m.ReadWide(0x0100, ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xbeef), got)
}

func TestVirtualModeTranslatesThroughPageTable(t *testing.T) {
	m := New()
	ptBase := uint32(0x000100)
	// page 1 (addresses 0x1000-0x1fff) -> frame 5, present+writable
	require.NoError(t, m.PhysicalWrite(ptBase+1*EntrySize, entryPresent|entryWrite))
	require.NoError(t, m.PhysicalWrite(ptBase+1*EntrySize+1, 5))
	require.NoError(t, m.PhysicalWrite(ptBase+1*EntrySize+2, 0))

	ctx := TranslateContext{VirtualMode: true, PageTableBase: uint16(ptBase)}
	require.NoError(t, m.Write(0x1042, 0x99, ctx))

	v, err := m.PhysicalRead(5<<PageShift | 0x042)
	require.NoError(t, err)
	assert.Equal(t, byte(0x99), v)
}

func TestVirtualModeMissingEntryFaults(t *testing.T) {
	m := New()
	ctx := TranslateContext{VirtualMode: true, PageTableBase: 0x100}
	_, err := m.Read(0x2000, ctx)

	var pf *PageFaultError
	require.True(t, errors.As(err, &pf))
	assert.Equal(t, uint16(0x2000), pf.VirtualAddr)
	assert.ErrorIs(t, err, ErrPageFault)
}

func TestVirtualModeWriteToReadOnlyPageFaults(t *testing.T) {
	m := New()
	ptBase := uint32(0x100)
	require.NoError(t, m.PhysicalWrite(ptBase, entryPresent)) // present, not writable
	require.NoError(t, m.PhysicalWrite(ptBase+1, 0))
	require.NoError(t, m.PhysicalWrite(ptBase+2, 0))

	ctx := TranslateContext{VirtualMode: true, PageTableBase: uint16(ptBase)}
	_, err := m.Read(0x0010, ctx)
	require.NoError(t, err) // reads are fine

	err = m.Write(0x0010, 1, ctx)
	assert.ErrorIs(t, err, ErrPageFault)
}
