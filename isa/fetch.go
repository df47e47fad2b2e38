package isa

import "telda2/nibble"

// A Fetcher supplies the next byte of the instruction stream, advancing
// the program counter as a side effect, and reports a trap if the byte
// cannot be read. cpu.Cpu's implementation has no text-segment bound: the
// PC wraps at 16 bits, and a fetch traps only when its address cannot be
// translated.
type Fetcher interface {
	Fetch() (byte, error)
}

// ArgPair fetches one operand byte and splits it into its high and low
// nibble, applying f1 to the high nibble and f2 to the low, mirroring
// original_source/src/blf4/isa/handlers.rs's arg_pair helper.
func ArgPair[T, U any](f Fetcher, f1 func(nibble.Nibble) T, f2 func(nibble.Nibble) U) (T, U, error) {
	var zeroT T
	var zeroU U
	b, err := f.Fetch()
	if err != nil {
		return zeroT, zeroU, err
	}
	hi, lo := nibble.Pair(b)
	return f1(hi), f2(lo), nil
}

// ArgImmByte fetches a raw 8-bit immediate.
func ArgImmByte(f Fetcher) (byte, error) {
	return f.Fetch()
}

// ArgImmWide fetches a little-endian 16-bit immediate.
func ArgImmWide(f Fetcher) (uint16, error) {
	lo, err := f.Fetch()
	if err != nil {
		return 0, err
	}
	hi, err := f.Fetch()
	if err != nil {
		return 0, err
	}
	return nibble.Word(lo, hi), nil
}

// Zero converts a nibble to a plain byte, used as the f2 of ArgPair when
// the low nibble of an operand byte must be the zero tag spec.md §4.1
// requires checking ("every 'zero nibble' slot MUST be zero on input").
func Zero(n nibble.Nibble) byte {
	return byte(n)
}
