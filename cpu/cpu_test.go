package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telda2/mem"
	"telda2/regs"
	"telda2/trap"
)

func newTestCpu() *Cpu {
	m := mem.New()
	c := New(m)
	c.Regs.WriteWide(regs.S, 0x8000)
	return c
}

func TestAddWSetsFlagsAndWritesResult(t *testing.T) {
	c := newTestCpu()
	c.Regs.WriteWide(regs.B, 10)
	c.Regs.WriteWide(regs.C, 20)

	// add_w a, b, c, 0 -> opcode 0x28, operand bytes 0x12 0x30 (reg
	// selectors 1,2 | 3,0)
	c.Mem.LoadAt(0, []byte{0x28, 0x12, 0x30})

	err := Execute(c)
	require.NoError(t, err)
	assert.Equal(t, uint16(30), c.Regs.ReadWide(regs.A))
	assert.False(t, c.Flags.Zero)
	assert.False(t, c.Flags.Carry)
}

func TestAddWZeroRegisterDestinationDiscardsWrite(t *testing.T) {
	c := newTestCpu()
	c.Regs.WriteWide(regs.B, 10)
	c.Regs.WriteWide(regs.C, 20)

	// add_w zero, b, c, 0 -> opcode 0x28, operands 0x02 0x30
	c.Mem.LoadAt(0, []byte{0x28, 0x02, 0x30})

	require.NoError(t, Execute(c))
	assert.Equal(t, uint16(0), c.Regs.ReadWide(regs.WZero))
}

func TestSubBUnderflowSetsCarry(t *testing.T) {
	c := newTestCpu()
	c.Regs.WriteByte(regs.Bl, 1)
	c.Regs.WriteByte(regs.Cl, 2)

	// sub_b al, bl, cl, 0: opcode 0x29, operands use the Al/Bl/Cl
	// selectors directly (1,3,5).
	c.Mem.LoadAt(0, []byte{0x29, 0x13, 0x50})

	require.NoError(t, Execute(c))
	assert.True(t, c.Flags.Carry)
	assert.Equal(t, byte(0xff), c.Regs.ReadByte(regs.Al))
}

func TestDivByZeroTraps(t *testing.T) {
	c := newTestCpu()
	c.Regs.WriteByte(regs.Cl, 0)

	// div_b a_l, a_h, b_l, c_l: opcode 0x39
	c.Mem.LoadAt(0, []byte{0x39, 0x12, 0x35})

	err := Execute(c)
	assert.Equal(t, trap.ZeroDiv, err)
}

func TestPushPopWideRoundTrip(t *testing.T) {
	c := newTestCpu()
	c.Regs.WriteWide(regs.B, 0xBEEF)

	// push_w b, 0 -> 0x0c 0x20 ; pop_w a, 0 -> 0x0e 0x10
	c.Mem.LoadAt(0, []byte{0x0c, 0x20, 0x0e, 0x10})

	require.NoError(t, Execute(c))
	require.NoError(t, Execute(c))
	assert.Equal(t, uint16(0xBEEF), c.Regs.ReadWide(regs.A))
}

func TestCallAndRet(t *testing.T) {
	c := newTestCpu()

	// call 0x0010 -> opcode 0x0f, imm16 le
	c.Mem.LoadAt(0, []byte{0x0f, 0x10, 0x00})
	// ret 0 at the call target
	c.Mem.LoadAt(0x10, []byte{0x10, 0x00})

	require.NoError(t, Execute(c)) // call
	assert.Equal(t, uint16(0x10), c.PC())
	assert.Equal(t, uint16(3), c.Regs.ReadWide(regs.Link))

	require.NoError(t, Execute(c)) // ret
	assert.Equal(t, uint16(3), c.PC())
}

func TestLdiWJumpThroughRegister(t *testing.T) {
	c := newTestCpu()
	c.Regs.WriteWide(regs.B, 0x40)

	// ldi_w b, variant=1 (jump through b) -> opcode 0x26, reg=2,variant=1 -> 0x21, imm16 unused but must be present
	c.Mem.LoadAt(0, []byte{0x26, 0x21, 0x00, 0x00})

	require.NoError(t, Execute(c))
	assert.Equal(t, uint16(0x40), c.PC())
}

func TestLdiWJumpImmediateWhenRegIsZero(t *testing.T) {
	c := newTestCpu()

	// ldi_w zero, variant=1, imm=0x55 -> opcode 0x26, reg=0,variant=1 -> 0x01, imm16=0x0055
	c.Mem.LoadAt(0, []byte{0x26, 0x01, 0x55, 0x00})

	require.NoError(t, Execute(c))
	assert.Equal(t, uint16(0x55), c.PC())
}

func TestRethWithoutTrapFlagIsIllegal(t *testing.T) {
	c := newTestCpu()
	c.Mem.LoadAt(0, []byte{0x05}) // RETH opcode

	err := Execute(c)
	assert.Equal(t, trap.IllegalHandlerReturn, err)
}

func TestUsrThenPrivilegedOpcodeTraps(t *testing.T) {
	c := newTestCpu()
	c.Mem.LoadAt(0, []byte{0x06}) // USR opcode
	require.NoError(t, Execute(c))
	assert.True(t, c.Flags.UserMode)

	// vmon is privileged; should trap now
	c.Mem.LoadAt(1, []byte{0x07})
	err := Execute(c)
	assert.Equal(t, trap.IllegalOperation, err)
}
