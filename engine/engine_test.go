package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telda2/mem"
	"telda2/regs"
	"telda2/trap"
)

func TestStepRunsPlainInstructionWithoutTrapping(t *testing.T) {
	e := New(mem.New())
	e.Cpu.Regs.WriteWide(regs.B, 1)
	e.Cpu.Regs.WriteWide(regs.C, 2)
	e.Mem.LoadAt(0, []byte{0x28, 0x12, 0x30}) // add_w a, b, c, 0

	mode, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, trap.None, mode)
	assert.Equal(t, uint16(3), e.Cpu.Regs.ReadWide(regs.A))
}

func TestHaltWithUnprogrammedVectorDoubleFaults(t *testing.T) {
	e := New(mem.New())
	e.Mem.LoadAt(0, []byte{0x01}) // HALT

	_, err := e.Run()
	assert.ErrorIs(t, err, ErrDoubleFault)
}

func TestHaltWithInstalledVectorEntersHandler(t *testing.T) {
	e := New(mem.New())
	// Halt's vector index is trap.Halt; install its handler at 0x0100.
	vectorAddr := uint32(trap.Halt) * 2
	e.Mem.PhysicalWriteWide(vectorAddr, 0x0100)
	e.Mem.LoadAt(0, []byte{0x01})          // HALT
	e.Mem.LoadAt(0x0100, []byte{0x02, 0x05}) // NOP; RETH

	mode, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, trap.Halt, mode)
	assert.True(t, e.Cpu.Flags.Trap)
	assert.Equal(t, uint16(0x0100), e.Cpu.PC())

	mode, err = e.Step() // nop inside handler
	require.NoError(t, err)
	assert.Equal(t, trap.None, mode)

	mode, err = e.Step() // reth
	require.NoError(t, err)
	assert.Equal(t, trap.None, mode)
	assert.False(t, e.Cpu.Flags.Trap)
	assert.Equal(t, uint16(1), e.Cpu.PC()) // resumes after the original HALT byte
}

func TestDoubleFaultWhileAlreadyTrapped(t *testing.T) {
	e := New(mem.New())
	vectorAddr := uint32(trap.Halt) * 2
	e.Mem.PhysicalWriteWide(vectorAddr, 0x0100)
	e.Mem.LoadAt(0, []byte{0x01})    // HALT
	e.Mem.LoadAt(0x0100, []byte{0x39, 0x00, 0x00}) // div_b inside handler, divisor 0 -> zero-div, not deliverable while trapped

	_, err := e.Step() // enters handler
	require.NoError(t, err)

	_, err = e.Step() // zero-div while already trapped
	assert.ErrorIs(t, err, ErrDoubleFault)
}
