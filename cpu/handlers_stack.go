package cpu

import (
	"telda2/isa"
	"telda2/regs"
	"telda2/trap"
)

func doPushB(c *Cpu) error {
	b, zero, err := isa.ArgPair(c, toByteReg, isa.Zero)
	if err != nil {
		return err
	}
	v, err := c.readBR(b)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}
	return c.pushByte(v)
}

func doPushW(c *Cpu) error {
	w, zero, err := isa.ArgPair(c, toWideReg, isa.Zero)
	if err != nil {
		return err
	}
	v, err := c.readWR(w)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}
	return c.pushWord(v)
}

func doPopB(c *Cpu) error {
	r1, zero, err := isa.ArgPair(c, toByteReg, isa.Zero)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}
	v, err := c.popByte()
	if err != nil {
		return err
	}
	return c.writeBR(r1, v)
}

func doPopW(c *Cpu) error {
	r1, zero, err := isa.ArgPair(c, toWideReg, isa.Zero)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}
	v, err := c.popWord()
	if err != nil {
		return err
	}
	return c.writeWR(r1, v)
}

// doCall pushes nothing: like original_source, the return address lives in
// the Link register rather than on the stack, so nested calls must be
// spilled to the stack explicitly by the callee (push_w link) before
// calling again.
func doCall(c *Cpu) error {
	target, err := isa.ArgImmWide(c)
	if err != nil {
		return err
	}
	c.Regs.WriteWide(regs.Link, c.pc)
	c.pc = target
	return nil
}

// doRet discards b bytes of arguments from the stack (by advancing the
// stack pointer past them) and returns to the address in Link.
func doRet(c *Cpu) error {
	b, err := isa.ArgImmByte(c)
	if err != nil {
		return err
	}
	sp := c.Regs.ReadWide(regs.S) + uint16(b)
	c.Regs.WriteWide(regs.S, sp)
	c.pc = c.Regs.ReadWide(regs.Link)
	return nil
}
