package cpu

import (
	"telda2/isa"
	"telda2/trap"
)

// binopB and binopW implement the shared shape of every two-operand
// arithmetic/logical instruction: decode r1,r2,r3 (+ a must-be-zero
// nibble), apply the unsigned op for the result and carry, re-run in
// signed form for the sign bit and overflow, set flags, and write r1. Grounded on handlers.rs's binop_b/binop_w.
func binopB(c *Cpu, op func(x, y byte) (byte, bool), iop func(x, y int8) (int8, bool)) error {
	r1, r2, err := isa.ArgPair(c, toByteReg, toByteReg)
	if err != nil {
		return err
	}
	r3, r4, err := isa.ArgPair(c, toByteReg, isa.Zero)
	if err != nil {
		return err
	}

	v2, err := c.readBR(r2)
	if err != nil {
		return err
	}
	v3, err := c.readBR(r3)
	if err != nil {
		return err
	}
	if r4 != 0 {
		return trap.Invalid
	}

	res, carry := op(v2, v3)
	ires, overflow := iop(int8(v2), int8(v3))
	c.Flags.SetArith(res == 0, ires < 0, carry, overflow)

	return c.writeBR(r1, res)
}

func binopW(c *Cpu, op func(x, y uint16) (uint16, bool), iop func(x, y int16) (int16, bool)) error {
	r1, r2, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	r3, r4, err := isa.ArgPair(c, toWideReg, isa.Zero)
	if err != nil {
		return err
	}

	v2, err := c.readWR(r2)
	if err != nil {
		return err
	}
	v3, err := c.readWR(r3)
	if err != nil {
		return err
	}
	if r4 != 0 {
		return trap.Invalid
	}

	res, carry := op(v2, v3)
	ires, overflow := iop(int16(v2), int16(v3))
	c.Flags.SetArith(res == 0, ires < 0, carry, overflow)

	return c.writeWR(r1, res)
}

func addB(x, y byte) (byte, bool) {
	res := x + y
	return res, res < x
}
func addW(x, y uint16) (uint16, bool) {
	res := x + y
	return res, res < x
}
func addI8(x, y int8) (int8, bool) {
	res := x + y
	return res, (x > 0 && y > 0 && res < 0) || (x < 0 && y < 0 && res >= 0)
}
func addI16(x, y int16) (int16, bool) {
	res := x + y
	return res, (x > 0 && y > 0 && res < 0) || (x < 0 && y < 0 && res >= 0)
}

func subB(x, y byte) (byte, bool) { return x - y, x < y }
func subW(x, y uint16) (uint16, bool) { return x - y, x < y }
func subI8(x, y int8) (int8, bool) {
	res := x - y
	return res, (x >= 0 && y < 0 && res < 0) || (x < 0 && y > 0 && res >= 0)
}
func subI16(x, y int16) (int16, bool) {
	res := x - y
	return res, (x >= 0 && y < 0 && res < 0) || (x < 0 && y > 0 && res >= 0)
}

func doAddB(c *Cpu) error { return binopB(c, addB, addI8) }
func doAddW(c *Cpu) error { return binopW(c, addW, addI16) }
func doSubB(c *Cpu) error { return binopB(c, subB, subI8) }
func doSubW(c *Cpu) error { return binopW(c, subW, subI16) }

func doAndB(c *Cpu) error {
	return binopB(c, func(x, y byte) (byte, bool) { return x & y, false },
		func(x, y int8) (int8, bool) { return x & y, false })
}
func doAndW(c *Cpu) error {
	return binopW(c, func(x, y uint16) (uint16, bool) { return x & y, false },
		func(x, y int16) (int16, bool) { return x & y, false })
}
func doOrB(c *Cpu) error {
	return binopB(c, func(x, y byte) (byte, bool) { return x | y, false },
		func(x, y int8) (int8, bool) { return x | y, false })
}
func doOrW(c *Cpu) error {
	return binopW(c, func(x, y uint16) (uint16, bool) { return x | y, false },
		func(x, y int16) (int16, bool) { return x | y, false })
}
func doXorB(c *Cpu) error {
	return binopB(c, func(x, y byte) (byte, bool) { return x ^ y, false },
		func(x, y int8) (int8, bool) { return x ^ y, false })
}
func doXorW(c *Cpu) error {
	return binopW(c, func(x, y uint16) (uint16, bool) { return x ^ y, false },
		func(x, y int16) (int16, bool) { return x ^ y, false })
}
func doShlB(c *Cpu) error {
	return binopB(c, func(x, y byte) (byte, bool) { return x << y, false },
		func(x, y int8) (int8, bool) { return x << uint8(y), false })
}
func doShlW(c *Cpu) error {
	return binopW(c, func(x, y uint16) (uint16, bool) { return x << y, false },
		func(x, y int16) (int16, bool) { return x << uint16(y), false })
}

// doAsrB/doAsrW shift arithmetically for the unsigned op too (matching
// handlers.rs's asr_b/asr_w, which shift the unsigned value as if signed
// and the signed value with a plain >>, an asymmetry original_source
// itself has).
func doAsrB(c *Cpu) error {
	return binopB(c, func(x, y byte) (byte, bool) { return byte(int8(x) >> y), false },
		func(x, y int8) (int8, bool) { return x >> uint8(y), false })
}
func doAsrW(c *Cpu) error {
	return binopW(c, func(x, y uint16) (uint16, bool) { return uint16(int16(x) >> y), false },
		func(x, y int16) (int16, bool) { return x >> uint16(y), false })
}
func doLsrB(c *Cpu) error {
	return binopB(c, func(x, y byte) (byte, bool) { return x >> y, false },
		func(x, y int8) (int8, bool) { return int8(uint8(x) >> y), false })
}
func doLsrW(c *Cpu) error {
	return binopW(c, func(x, y uint16) (uint16, bool) { return x >> y, false },
		func(x, y int16) (int16, bool) { return int16(uint16(x) >> y), false })
}

func doMulB(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toByteReg, toByteReg)
	if err != nil {
		return err
	}
	r3, r4, err := isa.ArgPair(c, toByteReg, toByteReg)
	if err != nil {
		return err
	}
	v3, err := c.readBR(r3)
	if err != nil {
		return err
	}
	v4, err := c.readBR(r4)
	if err != nil {
		return err
	}
	res := uint16(v3) * uint16(v4)
	lower, upper := byte(res), byte(res>>8)

	c.Flags.SetArith(lower == 0, int8(lower) < 0, upper != 0, upper != 0)

	if err := c.writeBR(r1, upper); err != nil {
		return err
	}
	return c.writeBR(r2, lower)
}

func doMulW(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	r3, r4, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	v3, err := c.readWR(r3)
	if err != nil {
		return err
	}
	v4, err := c.readWR(r4)
	if err != nil {
		return err
	}
	res := uint32(v3) * uint32(v4)
	lower, upper := uint16(res), uint16(res>>16)

	c.Flags.SetArith(lower == 0, int16(lower) < 0, upper != 0, upper != 0)

	if err := c.writeWR(r1, upper); err != nil {
		return err
	}
	return c.writeWR(r2, lower)
}

func doDivB(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toByteReg, toByteReg)
	if err != nil {
		return err
	}
	r3, r4, err := isa.ArgPair(c, toByteReg, toByteReg)
	if err != nil {
		return err
	}
	n1, err := c.readBR(r3)
	if err != nil {
		return err
	}
	n2, err := c.readBR(r4)
	if err != nil {
		return err
	}
	if n2 == 0 {
		return trap.ZeroDiv
	}
	if err := c.writeBR(r1, n1/n2); err != nil {
		return err
	}
	return c.writeBR(r2, n1%n2)
}

func doDivW(c *Cpu) error {
	r1, r2, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	r3, r4, err := isa.ArgPair(c, toWideReg, toWideReg)
	if err != nil {
		return err
	}
	n1, err := c.readWR(r3)
	if err != nil {
		return err
	}
	n2, err := c.readWR(r4)
	if err != nil {
		return err
	}
	if n2 == 0 {
		return trap.ZeroDiv
	}
	if err := c.writeWR(r1, n1/n2); err != nil {
		return err
	}
	return c.writeWR(r2, n1%n2)
}
