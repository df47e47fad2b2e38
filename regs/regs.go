// Package regs defines telda2's register selectors: the 4-bit identifiers
// decoded out of operand bytes, and the canonical mapping from selector to
// named register (spec.md §3).
//
// Selector 0 in either family names the hard-wired zero register: it reads
// as 0 and discards writes (see the zero-register policy in SPEC_FULL.md).
package regs

import "telda2/nibble"

// Byte names a byte-register selector (8-bit sub-field of some wide
// register).
type Byte nibble.Nibble

// Wide names a wide-register selector (16-bit value).
type Wide nibble.Nibble

// Byte register selectors. The first eight mirror
// original_source/src/source.rs's BReg enum (Zero, Al, Ah, Bl, Bh, Cl, Ch,
// Io); the remaining eight extend it to the full 4-bit selector space
// spec.md §3 requires, aliasing the low/high bytes of the extra wide
// general-purpose registers plus the low byte of S and Handler.
const (
	Zero Byte = iota
	Al
	Ah
	Bl
	Bh
	Cl
	Ch
	Io // low byte of X
	Dl
	Dh
	El
	Eh
	Fl
	Fh
	Sl // low byte of the stack pointer
	Hl // low byte of the handler-state register
)

// Wide register selectors. A, B, C, X, Y, Z, D, E, F are general purpose;
// the rest are the distinguished registers spec.md §3 calls for: "stack
// pointer, link, base, program counter alias, and handler state", plus the
// page-table-base register spec.md §4.2 requires for virtual mode.
const (
	WZero Wide = iota
	A
	B
	C
	X
	Y
	Z
	D
	E
	F
	S       // stack pointer
	Link    // return address set by CALL, consumed by RET
	Base    // mode-specific upper byte of the non-virtual-mode physical frame
	Pt      // page-table base, consulted only in virtual_mode
	Pc      // program-counter alias: reads current PC, writes jump
	Handler // handler-state register, meaningful only inside a trap handler
)

var byteNames = [16]string{
	"zero", "al", "ah", "bl", "bh", "cl", "ch", "io",
	"dl", "dh", "el", "eh", "fl", "fh", "sl", "hl",
}

var wideNames = [16]string{
	"zero", "a", "b", "c", "x", "y", "z", "d", "e", "f",
	"s", "link", "base", "pt", "pc", "handler",
}

// String returns the canonical lowercase name for a byte register selector.
func (b Byte) String() string {
	return byteNames[b&0x0f]
}

// String returns the canonical lowercase name for a wide register selector.
func (w Wide) String() string {
	return wideNames[w&0x0f]
}

// LookupByte returns the byte register selector for its canonical name, as
// used by the assembler's operand parser.
func LookupByte(name string) (Byte, bool) {
	for i, n := range byteNames {
		if n == name {
			return Byte(i), true
		}
	}
	return 0, false
}

// LookupWide returns the wide register selector for its canonical name, as
// used by the assembler's operand parser.
func LookupWide(name string) (Wide, bool) {
	for i, n := range wideNames {
		if n == name {
			return Wide(i), true
		}
	}
	return 0, false
}

// IsZero reports whether b is the hard-wired zero byte register.
func (b Byte) IsZero() bool { return b&0x0f == Zero }

// IsZero reports whether w is the hard-wired zero wide register.
func (w Wide) IsZero() bool { return w&0x0f == WZero }

// File holds the 16 wide registers and their byte sub-fields. Byte
// registers alias the low/high byte of a specific backing wide register,
// so every byte selector has a backing wide register (spec.md §3: "a byte
// register names an 8-bit sub-field of some wide register"). Pc is not
// stored here: it is an alias the CPU resolves against its live program
// counter. Handler is stored like a general-purpose register, and its
// byte form (Hl) aliases that same slot.
type File struct {
	w [16]uint16
}

// wideOf returns the wide register selector backing a given byte selector.
func wideOf(b Byte) Wide {
	switch b & 0x0f {
	case Zero:
		return WZero
	case Al, Ah:
		return A
	case Bl, Bh:
		return B
	case Cl, Ch:
		return C
	case Io:
		return X
	case Dl, Dh:
		return D
	case El, Eh:
		return E
	case Fl, Fh:
		return F
	case Sl:
		return S
	default: // Hl
		return Handler
	}
}

// isHighByte reports whether b aliases the high byte of its backing wide
// register.
func isHighByte(b Byte) bool {
	switch b & 0x0f {
	case Ah, Bh, Ch, Dh, Eh, Fh:
		return true
	default:
		return false
	}
}

// ReadWide reads a wide register other than Pc, which the CPU must
// resolve itself against the live program counter. The zero register
// always reads as 0.
func (f *File) ReadWide(w Wide) uint16 {
	if w.IsZero() {
		return 0
	}
	return f.w[w&0x0f]
}

// WriteWide writes a wide register other than Pc. Writes to the zero
// register are silently discarded, the pinned policy for spec.md §9's
// zero-register open question (see DESIGN.md).
func (f *File) WriteWide(w Wide, v uint16) {
	if w.IsZero() {
		return
	}
	f.w[w&0x0f] = v
}

// ReadByte reads a byte register. The zero register always reads as 0.
func (f *File) ReadByte(b Byte) byte {
	if b.IsZero() {
		return 0
	}
	lo, hi := nibble.SplitWord(f.w[wideOf(b)&0x0f])
	if isHighByte(b) {
		return hi
	}
	return lo
}

// WriteByte writes a byte register, leaving the other byte of its backing
// wide register untouched. Writes to the zero register are silently
// discarded.
func (f *File) WriteByte(b Byte, v byte) {
	if b.IsZero() {
		return
	}
	idx := wideOf(b) & 0x0f
	lo, hi := nibble.SplitWord(f.w[idx])
	if isHighByte(b) {
		hi = v
	} else {
		lo = v
	}
	f.w[idx] = nibble.Word(lo, hi)
}
