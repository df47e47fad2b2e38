package cpu

import (
	"telda2/isa"
	"telda2/nibble"
	"telda2/trap"
)

// jif fetches the jump target and, if cond holds, sets PC to it. Every
// conditional jump handler is jif with a different flag expression,
// mirroring handlers.rs's own jif helper.
func jif(c *Cpu, cond bool) error {
	target, err := isa.ArgImmWide(c)
	if err != nil {
		return err
	}
	if cond {
		c.pc = target
	}
	return nil
}

func doJez(c *Cpu) error { return jif(c, c.Flags.Zero) }
func doJnz(c *Cpu) error { return jif(c, !c.Flags.Zero) }
func doJlt(c *Cpu) error { return jif(c, c.Flags.Sign != c.Flags.Overflow) }
func doJle(c *Cpu) error { return jif(c, c.Flags.Sign != c.Flags.Overflow || c.Flags.Zero) }
func doJgt(c *Cpu) error { return jif(c, c.Flags.Sign == c.Flags.Overflow && !c.Flags.Zero) }
func doJge(c *Cpu) error { return jif(c, c.Flags.Sign == c.Flags.Overflow) }
func doJo(c *Cpu) error  { return jif(c, c.Flags.Overflow) }
func doJno(c *Cpu) error { return jif(c, !c.Flags.Overflow) }
func doJa(c *Cpu) error  { return jif(c, !c.Flags.Carry && !c.Flags.Zero) }
func doJae(c *Cpu) error { return jif(c, !c.Flags.Carry) }
func doJb(c *Cpu) error  { return jif(c, c.Flags.Carry) }
func doJbe(c *Cpu) error { return jif(c, c.Flags.Carry || c.Flags.Zero) }

func doLdiB(c *Cpu) error {
	r1, zero, err := isa.ArgPair(c, toByteReg, isa.Zero)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}
	b, err := isa.ArgImmByte(c)
	if err != nil {
		return err
	}
	return c.writeBR(r1, b)
}

// doLdiW decodes a variant-tagged load/jump fused instruction: variant 0
// loads the wide immediate into r1; variant 1 jumps — to the immediate
// itself if r1 is the zero register, or through r1 otherwise (a
// register-indirect jump), per handlers.rs's ldi_w.
func doLdiW(c *Cpu) error {
	r1, variant, err := isa.ArgPair(c, toWideReg, toByteVariant)
	if err != nil {
		return err
	}
	w, err := isa.ArgImmWide(c)
	if err != nil {
		return err
	}

	switch variant {
	case 0:
		return c.writeWR(r1, w)
	case 1:
		if r1.IsZero() {
			c.pc = w
			return nil
		}
		target, err := c.readWR(r1)
		if err != nil {
			return err
		}
		c.pc = target
		return nil
	default:
		return trap.Invalid
	}
}

func toByteVariant(n nibble.Nibble) byte { return byte(n) }
