package cpu

import (
	"telda2/isa"
	"telda2/nibble"
	"telda2/regs"
	"telda2/trap"
)

// doPstore and doPload are the privileged raw-physical-memory
// instructions: the target address is a 24-bit physical address built
// from an explicit high byte and a wide register holding the low 16 bits,
// bypassing translation entirely. Grounded on handlers.rs's pstore/pload.
func doPstore(c *Cpu) error {
	if c.Flags.UserMode {
		return trap.IllegalOperation
	}
	br1, wr, err := isa.ArgPair(c, toByteReg, toWideReg)
	if err != nil {
		return err
	}
	br2, zero, err := isa.ArgPair(c, toByteReg, isa.Zero)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}

	highByte, err := c.readBR(br1)
	if err != nil {
		return err
	}
	lowWide, err := c.readWR(wr)
	if err != nil {
		return err
	}
	addr := uint32(lowWide) | uint32(highByte)<<16

	val, err := c.readBR(br2)
	if err != nil {
		return err
	}
	if err := c.Mem.PhysicalWrite(addr, val); err != nil {
		return trap.MemoryFault
	}
	return nil
}

func doPload(c *Cpu) error {
	if c.Flags.UserMode {
		return trap.IllegalOperation
	}
	br1, br2, err := isa.ArgPair(c, toByteReg, toByteReg)
	if err != nil {
		return err
	}
	wr, zero, err := isa.ArgPair(c, toWideReg, isa.Zero)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}

	highByte, err := c.readBR(br2)
	if err != nil {
		return err
	}
	lowWide, err := c.readWR(wr)
	if err != nil {
		return err
	}
	addr := uint32(lowWide) | uint32(highByte)<<16

	val, err := c.Mem.PhysicalRead(addr)
	if err != nil {
		return trap.MemoryFault
	}
	return c.writeBR(br1, val)
}

func doStoreBI(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toWideReg, toByteReg)
	if err != nil {
		return err
	}
	offset, err := isa.ArgImmWide(c)
	if err != nil {
		return err
	}
	base, err := c.readWR(r1)
	if err != nil {
		return err
	}
	val, err := c.readBR(r2)
	if err != nil {
		return err
	}
	return c.write(base+offset, val)
}

func doStoreBR(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	r3, zero, err := isa.ArgPair(c, toByteReg, isa.Zero)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}
	base, err := c.readWR(r1)
	if err != nil {
		return err
	}
	offset, err := c.readWR(r2)
	if err != nil {
		return err
	}
	val, err := c.readBR(r3)
	if err != nil {
		return err
	}
	return c.write(base+offset, val)
}

func doStoreWI(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	offset, err := isa.ArgImmWide(c)
	if err != nil {
		return err
	}
	base, err := c.readWR(r1)
	if err != nil {
		return err
	}
	val, err := c.readWR(r2)
	if err != nil {
		return err
	}
	return c.writeWide(base+offset, val)
}

func doStoreWR(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	r3, zero, err := isa.ArgPair(c, toWideReg, isa.Zero)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}
	base, err := c.readWR(r1)
	if err != nil {
		return err
	}
	offset, err := c.readWR(r2)
	if err != nil {
		return err
	}
	val, err := c.readWR(r3)
	if err != nil {
		return err
	}
	return c.writeWide(base+offset, val)
}

func doLoadBI(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toByteReg, toWideReg)
	if err != nil {
		return err
	}
	offset, err := isa.ArgImmWide(c)
	if err != nil {
		return err
	}
	base, err := c.readWR(r2)
	if err != nil {
		return err
	}
	val, err := c.read(base + offset)
	if err != nil {
		return err
	}
	return c.writeBR(r1, val)
}

func doLoadBR(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toByteReg, toWideReg)
	if err != nil {
		return err
	}
	r3, zero, err := isa.ArgPair(c, toWideReg, isa.Zero)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}
	offset, err := c.readWR(r3)
	if err != nil {
		return err
	}
	base, err := c.readWR(r2)
	if err != nil {
		return err
	}
	val, err := c.read(base + offset)
	if err != nil {
		return err
	}
	return c.writeBR(r1, val)
}

func doLoadWI(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	offset, err := isa.ArgImmWide(c)
	if err != nil {
		return err
	}
	base, err := c.readWR(r2)
	if err != nil {
		return err
	}
	val, err := c.readWide(base + offset)
	if err != nil {
		return err
	}
	return c.writeWR(r1, val)
}

func doLoadWR(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	r3, zero, err := isa.ArgPair(c, toWideReg, isa.Zero)
	if err != nil {
		return err
	}
	if zero != 0 {
		return trap.Invalid
	}
	offset, err := c.readWR(r3)
	if err != nil {
		return err
	}
	base, err := c.readWR(r2)
	if err != nil {
		return err
	}
	val, err := c.readWide(base + offset)
	if err != nil {
		return err
	}
	return c.writeWR(r1, val)
}

func toByteReg(n nibble.Nibble) regs.Byte { return regs.Byte(n) }
func toWideReg(n nibble.Nibble) regs.Wide { return regs.Wide(n) }
