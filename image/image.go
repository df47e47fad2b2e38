// Package image defines telda2's on-disk binary output: the raw byte
// image an assembler produces and the symbol-table sidecar that names
// offsets within it, grounded on
// original_source/src/bin/tc.rs's `.tbin`/`.tsym` pair.
package image

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Visibility controls whether a symbol is written with the "private $"
// prefix tc.rs uses for non-global labels, extended to a third value for
// symbols declared with `.reference` (spec.md §6): a symbol this module
// uses but expects another module's image to define.
type Visibility int

const (
	Internal Visibility = iota // file-local; written as "private $name: ..."
	Global                     // exported; written as "name: ..."
	Reference                  // expected to be defined elsewhere; not written
)

func (v Visibility) String() string {
	switch v {
	case Internal:
		return "internal"
	case Global:
		return "global"
	case Reference:
		return "reference"
	default:
		return fmt.Sprintf("image.Visibility(%d)", int(v))
	}
}

// Symbol is one named offset into an Image's code/data region.
type Symbol struct {
	Name       string
	Visibility Visibility
	Offset     uint16
}

// Image is the assembler's output: the raw instruction/data bytes
// destined for a fixed load base, the resolved symbol table, and an
// optional entry point (the offset the source's `.entry` directive
// marked, if any).
type Image struct {
	LoadBase uint16
	Bytes    []byte
	Symbols  []Symbol
	Entry    *uint16
}

// WriteBinary writes the raw bytes, exactly tc.rs's `.tbin` output.
func (img *Image) WriteBinary(w io.Writer) error {
	_, err := w.Write(img.Bytes)
	return err
}

// WriteSymbols writes the `name: 0xLOC` / `private $name: 0xLOC` sidecar
// tc.rs's `.tsym` output uses, generalized to also skip Reference symbols
// (spec.md §6: a reference symbol is consumed, not produced) and to carry
// the image's entry point (set by the source's `.entry` directive, if any)
// as a leading `entry: 0xLOC` line, so a later `tdbg` invocation recovers
// it without guessing from a label named `_start`.
func (img *Image) WriteSymbols(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if img.Entry != nil {
		if _, err := fmt.Fprintf(bw, "entry: 0x%02X\n", *img.Entry); err != nil {
			return err
		}
	}
	for _, s := range img.Symbols {
		if s.Visibility == Reference {
			continue
		}
		if s.Visibility == Internal {
			if _, err := fmt.Fprint(bw, "private $"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%s: 0x%02X\n", s.Name, s.Offset); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSymbols parses a `.tsym` file back into a Symbol slice plus the
// entry point its leading `entry: 0xLOC` line carries (nil if absent),
// used by the debugger to show label names next to addresses and to
// resume execution at the address the assembler recorded.
func ReadSymbols(r io.Reader) ([]Symbol, *uint16, error) {
	var symbols []Symbol
	var entry *uint16
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "entry:"); ok {
			off, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(rest), "0x"), 16, 16)
			if err != nil {
				return nil, nil, fmt.Errorf("image: malformed entry line %q: %w", line, err)
			}
			v := uint16(off)
			entry = &v
			continue
		}
		vis := Global
		if strings.HasPrefix(line, "private $") {
			vis = Internal
			line = line[len("private $"):]
		}
		name, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, nil, fmt.Errorf("image: malformed symbol line %q", line)
		}
		rest = strings.TrimSpace(rest)
		offset, err := strconv.ParseUint(strings.TrimPrefix(rest, "0x"), 16, 16)
		if err != nil {
			return nil, nil, fmt.Errorf("image: malformed offset in %q: %w", line, err)
		}
		symbols = append(symbols, Symbol{Name: strings.TrimSpace(name), Visibility: vis, Offset: uint16(offset)})
	}
	return symbols, entry, sc.Err()
}

// HasStart reports whether symbols contains an entry named "_start",
// mirroring tc.rs's no-_start warning check.
func HasStart(symbols []Symbol) bool {
	for _, s := range symbols {
		if s.Name == "_start" {
			return true
		}
	}
	return false
}
