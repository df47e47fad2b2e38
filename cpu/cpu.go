// Package cpu implements telda2's execution core: the register file,
// flags, stack/trap bookkeeping, and the fixed 256-entry opcode dispatch
// table spec.md §9 requires in place of a hashmap or string-switch.
package cpu

import (
	"fmt"

	"telda2/flags"
	"telda2/mem"
	"telda2/regs"
	"telda2/trap"
)

// Cpu holds all architectural state for one telda2 core: the register
// file, flags/mode bits, the live program counter, and the attached
// memory. It implements isa.Fetcher directly against its own program
// counter, mirroring hejops-gone/cpu/cpu.go's single struct owning both
// registers and the fetch cursor.
type Cpu struct {
	Regs  regs.File
	Flags flags.Word
	Mem   *mem.Memory

	pc uint16
}

// New returns a Cpu with all registers zeroed and the supervisor mode bit
// already clear, ready to start fetching at physical/effective address 0.
func New(m *mem.Memory) *Cpu {
	return &Cpu{Mem: m}
}

// PC returns the live program counter.
func (c *Cpu) PC() uint16 { return c.pc }

// SetPC overwrites the live program counter, used by CALL/RET/jumps and by
// trap delivery/return.
func (c *Cpu) SetPC(v uint16) { c.pc = v }

// Fetch implements isa.Fetcher: it reads one byte at the current PC
// through the effective-address path (so code run from a paged text
// segment decodes correctly) and advances PC by one. A translation
// failure surfaces as the same trap a data access would raise.
func (c *Cpu) Fetch() (byte, error) {
	b, err := c.read(c.pc)
	if err != nil {
		return 0, err
	}
	c.pc++
	return b, nil
}

// translateCtx builds the mem.TranslateContext for the current mode,
// using the low byte of the Base register as the non-virtual-mode frame
// byte (spec.md §4.2; SPEC_FULL.md's virtual memory resolution).
func (c *Cpu) translateCtx() mem.TranslateContext {
	return mem.TranslateContext{
		VirtualMode:   c.Flags.VirtualMode,
		PageTableBase: c.Regs.ReadWide(regs.Pt),
		Base:          byte(c.Regs.ReadWide(regs.Base)),
	}
}

// faultTrap maps a mem package error to the trap it raises: a page fault
// carrying the faulting virtual address becomes trap.PageFault, anything
// else (an out-of-range physical frame from a malformed page-table entry
// or base register) becomes trap.MemoryFault.
func faultTrap(err error) error {
	if _, ok := err.(*mem.PageFaultError); ok {
		return trap.PageFault
	}
	return trap.MemoryFault
}

// read/write are the data-path accesses named to match
// original_source/src/blf4/isa/handlers.rs's c.read/c.write.
func (c *Cpu) read(addr uint16) (byte, error) {
	v, err := c.Mem.Read(addr, c.translateCtx())
	if err != nil {
		return 0, faultTrap(err)
	}
	return v, nil
}

func (c *Cpu) write(addr uint16, v byte) error {
	if err := c.Mem.Write(addr, v, c.translateCtx()); err != nil {
		return faultTrap(err)
	}
	return nil
}

// readWide/writeWide perform a little-endian two-byte effective access,
// mirroring handlers.rs's c.read_wide/c.write_wide.
func (c *Cpu) readWide(addr uint16) (uint16, error) {
	v, err := c.Mem.ReadWide(addr, c.translateCtx())
	if err != nil {
		return 0, faultTrap(err)
	}
	return v, nil
}

func (c *Cpu) writeWide(addr uint16, v uint16) error {
	if err := c.Mem.WriteWide(addr, v, c.translateCtx()); err != nil {
		return faultTrap(err)
	}
	return nil
}

// readWR/writeWR read or write a wide register, resolving regs.Pc against
// the live PC rather than File's backing array, and rejecting user-mode
// access to the supervisor-only registers (Pt, Handler) with
// trap.IllegalOperation — a restriction original_source's Result-typed
// read_wr/write_wr leave implicit but spec.md §5's privileged/user split
// requires somewhere.
func (c *Cpu) readWR(w regs.Wide) (uint16, error) {
	if err := c.checkSupervisorReg(w); err != nil {
		return 0, err
	}
	if w == regs.Pc {
		return c.pc, nil
	}
	return c.Regs.ReadWide(w), nil
}

func (c *Cpu) writeWR(w regs.Wide, v uint16) error {
	if err := c.checkSupervisorReg(w); err != nil {
		return err
	}
	if w == regs.Pc {
		c.pc = v
		return nil
	}
	c.Regs.WriteWide(w, v)
	return nil
}

func (c *Cpu) checkSupervisorReg(w regs.Wide) error {
	if c.Flags.UserMode && (w == regs.Pt || w == regs.Handler) {
		return trap.IllegalOperation
	}
	return nil
}

// readBR/writeBR read or write a byte register. Hl is the only byte
// register that aliases a supervisor-only wide register (Handler), so it
// gets the same user-mode check readWR/writeWR apply to Handler.
func (c *Cpu) readBR(b regs.Byte) (byte, error) {
	if b == regs.Hl && c.Flags.UserMode {
		return 0, trap.IllegalOperation
	}
	return c.Regs.ReadByte(b), nil
}

func (c *Cpu) writeBR(b regs.Byte, v byte) error {
	if b == regs.Hl && c.Flags.UserMode {
		return trap.IllegalOperation
	}
	c.Regs.WriteByte(b, v)
	return nil
}

// pushByte/pushWord/popByte/popWord implement the downward-growing stack
// pointed to by regs.S, matching original_source's c.pushb/pushw/popb/popw.
func (c *Cpu) pushByte(v byte) error {
	sp := c.Regs.ReadWide(regs.S) - 1
	if err := c.write(sp, v); err != nil {
		return err
	}
	c.Regs.WriteWide(regs.S, sp)
	return nil
}

func (c *Cpu) pushWord(v uint16) error {
	sp := c.Regs.ReadWide(regs.S) - 2
	if err := c.writeWide(sp, v); err != nil {
		return err
	}
	c.Regs.WriteWide(regs.S, sp)
	return nil
}

func (c *Cpu) popByte() (byte, error) {
	sp := c.Regs.ReadWide(regs.S)
	v, err := c.read(sp)
	if err != nil {
		return 0, err
	}
	c.Regs.WriteWide(regs.S, sp+1)
	return v, nil
}

func (c *Cpu) popWord() (uint16, error) {
	sp := c.Regs.ReadWide(regs.S)
	v, err := c.readWide(sp)
	if err != nil {
		return 0, err
	}
	c.Regs.WriteWide(regs.S, sp+2)
	return v, nil
}

// trapFrameRegs lists the GPRs saved/restored by PushTrapFrame/
// PopTrapFrame, in push order.
var trapFrameRegs = [...]regs.Wide{regs.A, regs.B, regs.C, regs.X, regs.Y, regs.Z, regs.D, regs.E, regs.F}

// PushTrapFrame pushes the interrupted context onto the stack pointed to
// by regs.S: every GPR, the link register, the packed flag byte, then the
// faulting PC, matching spec.md §4.4 step 3 ("push the saved register
// set... onto the supervisor stack") — a real stack push rather than a
// single dedicated save slot, so a second deliverable trap
// (trap.Mode.Deliverable(), e.g. Halt/SysCall firing while already
// trapped) nests correctly instead of clobbering the outer trap's saved
// context.
func (c *Cpu) PushTrapFrame() error {
	for _, w := range trapFrameRegs {
		if err := c.pushWord(c.Regs.ReadWide(w)); err != nil {
			return err
		}
	}
	if err := c.pushWord(c.Regs.ReadWide(regs.Link)); err != nil {
		return err
	}
	if err := c.pushByte(c.Flags.Pack()); err != nil {
		return err
	}
	return c.pushWord(c.pc)
}

// PopTrapFrame reverses PushTrapFrame, restoring GPRs, link, flags, and PC
// from the stack. RETH calls this then separately clears Flags.Trap, per
// spec.md §4.4 ("RETH reverses step 3 and clears trap").
func (c *Cpu) PopTrapFrame() error {
	pc, err := c.popWord()
	if err != nil {
		return err
	}
	flagByte, err := c.popByte()
	if err != nil {
		return err
	}
	link, err := c.popWord()
	if err != nil {
		return err
	}
	for i := len(trapFrameRegs) - 1; i >= 0; i-- {
		v, err := c.popWord()
		if err != nil {
			return err
		}
		c.Regs.WriteWide(trapFrameRegs[i], v)
	}
	c.Regs.WriteWide(regs.Link, link)
	c.Flags = flags.Unpack(flagByte)
	c.pc = pc
	return nil
}

// String renders the CPU's architectural state for debugger/log use,
// grounded on hejops-gone/cpu/cpu.go's String method.
func (c *Cpu) String() string {
	return fmt.Sprintf("pc=%#04x s=%#04x flags=%#02x", c.pc, c.Regs.ReadWide(regs.S), c.Flags.Pack())
}
