// Package flags holds the CPU's condition flags and privilege mode bits
// (spec.md §3) and the packed-byte form used when a trap saves and
// restores them across the privilege boundary (spec.md §4.4).
package flags

// Word holds the four condition flags and three mode bits. It is saved and
// restored verbatim across trap entry/exit.
type Word struct {
	Zero     bool
	Sign     bool
	Carry    bool
	Overflow bool

	Trap        bool // currently executing a trap handler
	UserMode    bool // privilege: true means unprivileged
	VirtualMode bool // address translation on
}

// Bit positions used by Pack/Unpack, chosen so the four condition flags
// occupy the low nibble and the three mode bits the next three bits,
// leaving the top bit reserved — the same packing shape as
// original_source/src/standard16.rs's flags byte (low nibble = condition
// codes).
const (
	bitZero = 1 << iota
	bitSign
	bitCarry
	bitOverflow
	bitTrap
	bitUserMode
	bitVirtualMode
)

// Pack serializes the flag word to a single byte, for pushing onto the
// supervisor stack during trap entry.
func (f Word) Pack() byte {
	var b byte
	if f.Zero {
		b |= bitZero
	}
	if f.Sign {
		b |= bitSign
	}
	if f.Carry {
		b |= bitCarry
	}
	if f.Overflow {
		b |= bitOverflow
	}
	if f.Trap {
		b |= bitTrap
	}
	if f.UserMode {
		b |= bitUserMode
	}
	if f.VirtualMode {
		b |= bitVirtualMode
	}
	return b
}

// Unpack deserializes a flag byte, as read back during RETH.
func Unpack(b byte) Word {
	return Word{
		Zero:        b&bitZero != 0,
		Sign:        b&bitSign != 0,
		Carry:       b&bitCarry != 0,
		Overflow:    b&bitOverflow != 0,
		Trap:        b&bitTrap != 0,
		UserMode:    b&bitUserMode != 0,
		VirtualMode: b&bitVirtualMode != 0,
	}
}

// SetArith sets the four condition flags from the result of an
// arithmetic/logical binop, per spec.md §8's flag laws: zero iff the
// result is zero, sign iff the result's high bit is set, carry/overflow as
// supplied by the caller (false for bitwise ops).
func (f *Word) SetArith(resultZero, resultNegative, carry, overflow bool) {
	f.Zero = resultZero
	f.Sign = resultNegative
	f.Carry = carry
	f.Overflow = overflow
}
