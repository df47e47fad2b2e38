package asm

import (
	"fmt"

	"telda2/image"
	"telda2/isa"
	"telda2/nibble"
	"telda2/regs"
)

type labelInfo struct {
	offset     uint16
	defined    bool
	visibility image.Visibility
	uses       []*Error
}

type labelPatch struct {
	insIndex int // index into encoded
	fieldIdx int
	label    string
	line     int
}

type encodedIns struct {
	opcode isa.Opcode
	shape  isa.Shape
	ops    []isa.Operand
	offset uint16
}

// Assembler runs telda2's two-pass assembly: pass one walks the source
// computing every label's offset and building each instruction's operand
// list (deferring any operand that names a label); pass two resolves
// those deferred label references against the final address table and
// encodes every instruction through isa.Encode, the exact inverse of the
// engine's own decoder.
//
// Grounded on original_source/src/source.rs's process/inner_process
// (offset accounting, LabelMaker) generalized from that file's ad hoc
// DataOperand encoding into a direct drive of isa.Shapes/isa.Encode.
type Assembler struct {
	filename string
	labels   map[string]*labelInfo
	patches  []labelPatch
	encoded  []encodedIns
	raw      map[int][]byte // line number -> raw bytes (.byte/.wide/.string)
	order    []orderedItem
	offset   uint16
	externs  map[string]uint16
	entry    *uint16
}

type orderedItem struct {
	isRaw    bool
	rawLine  int
	insIndex int
}

// Assemble assembles one source file into an Image. externs supplies
// addresses for symbols declared `.reference` in this file but defined in
// another module; a reference used without a matching extern resolves to
// address 0 (this assembler does not implement cross-image linking, only
// single-file assembly plus an externally-supplied resolution table).
func Assemble(src string, filename string, externs map[string]uint16) (*image.Image, error) {
	lines, err := lexLines(src, filename)
	if err != nil {
		return nil, err
	}

	a := &Assembler{
		filename: filename,
		labels:   make(map[string]*labelInfo),
		raw:      make(map[int][]byte),
		externs:  externs,
	}

	for _, sl := range lines {
		if err := a.processLine(sl); err != nil {
			return nil, err
		}
	}

	if err := a.checkUndefined(); err != nil {
		return nil, err
	}

	return a.render()
}

func (a *Assembler) label(name string) *labelInfo {
	l, ok := a.labels[name]
	if !ok {
		l = &labelInfo{}
		a.labels[name] = l
	}
	return l
}

func (a *Assembler) processLine(sl sourceLine) error {
	switch sl.kind {
	case lineComment:
		return nil
	case lineLabel:
		l := a.label(sl.label)
		if l.defined {
			return &Error{Source: a.filename, Line: sl.num, Kind: DuplicateLabel, Msg: sl.label}
		}
		l.offset = a.offset
		l.defined = true
		return nil
	case lineDirGlobal:
		a.label(sl.label).visibility = image.Global
		return nil
	case lineDirReference:
		l := a.label(sl.label)
		l.visibility = image.Reference
		if addr, ok := a.externs[sl.label]; ok {
			l.offset = addr
		}
		l.defined = true
		return nil
	case lineDirEntry:
		// .entry takes no argument: it marks the current assembly
		// position as the entry point, matching
		// original_source/src/source/mod.rs's DirEntry (`Address(current_segment,
		// state.get_size(current_segment))`). A second .entry is a
		// DoubleEntry error.
		if a.entry != nil {
			return &Error{Source: a.filename, Line: sl.num, Kind: DoubleEntry, Msg: "entry already set"}
		}
		off := a.offset
		a.entry = &off
		return nil
	case lineDirSeg:
		return nil // single-segment images only; the directive is accepted for source compatibility
	case lineDirByte:
		a.raw[sl.num] = sl.bytes
		a.order = append(a.order, orderedItem{isRaw: true, rawLine: sl.num})
		a.offset += uint16(len(sl.bytes))
		return nil
	case lineDirWide:
		a.raw[sl.num] = sl.bytes
		a.order = append(a.order, orderedItem{isRaw: true, rawLine: sl.num})
		a.offset += uint16(len(sl.bytes))
		return nil
	case lineDirString:
		a.raw[sl.num] = sl.bytes
		a.order = append(a.order, orderedItem{isRaw: true, rawLine: sl.num})
		a.offset += uint16(len(sl.bytes))
		return nil
	case lineDirInclude:
		return &Error{Source: a.filename, Line: sl.num, Kind: Other, Msg: "include is not supported by this in-memory assembler; pre-concatenate sources"}
	case lineIns:
		return a.processInstruction(sl)
	default:
		return &Error{Source: a.filename, Line: sl.num, Kind: Other, Msg: "unhandled line kind"}
	}
}

func (a *Assembler) processInstruction(sl sourceLine) error {
	op, shape, ops, tokenIdx, err := resolveMnemonic(sl.mnemonic, sl.operands)
	if err != nil {
		return &Error{Source: a.filename, Line: sl.num, Kind: InvalidOperand, Msg: fmt.Sprintf("%s: %v", sl.mnemonic, err)}
	}

	insIndex := len(a.encoded)
	a.encoded = append(a.encoded, encodedIns{opcode: op, shape: shape, ops: ops, offset: a.offset})
	a.order = append(a.order, orderedItem{insIndex: insIndex, isRaw: false, rawLine: -1})

	// Record deferred label patches: resolveMnemonic has already tagged
	// which field indices (if any) are pending a label lookup via
	// tokenIdx's parallel labels slice.
	for _, p := range tokenIdx {
		a.patches = append(a.patches, labelPatch{insIndex: insIndex, fieldIdx: p.fieldIdx, label: p.label, line: sl.num})
	}

	a.offset += 1 + uint16(shape.Size())
	return nil
}

// labelRef pairs a pending label name with the operand field index it
// belongs to.
type labelRef struct {
	fieldIdx int
	label    string
}

// resolveMnemonic decodes one instruction's mnemonic and operand tokens
// into its opcode, shape, and operand list, walking the shape field by
// field: FieldZero is filled automatically, every other field consumes
// the next user token. A wide-immediate field whose token names a label
// is left as Imm16=0 and reported via the returned []labelRef for the
// caller to patch once every label's address is known.
//
// "jmp"/"jump" are assembled as pseudo-mnemonics for LDI_W with its jump
// variant fixed, matching original_source/src/source.rs's own jmp/jump
// overload of ldi_w's variant-1 form.
func resolveMnemonic(mnemonic string, tokens []string) (isa.Opcode, isa.Shape, []isa.Operand, []labelRef, error) {
	if mnemonic == "jmp" || mnemonic == "jump" {
		return resolveJump(tokens)
	}

	op, ok := isa.Lookup(mnemonic)
	if !ok {
		return 0, nil, nil, nil, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
	shape := isa.Shapes[op]

	ops := make([]isa.Operand, len(shape))
	var refs []labelRef
	ti := 0
	for i, f := range shape {
		if f == isa.FieldZero {
			continue
		}
		if ti >= len(tokens) {
			return 0, nil, nil, nil, fmt.Errorf("expected %d operands, got %d", countNonZero(shape), len(tokens))
		}
		parsed, err := parseOperand(tokens[ti])
		if err != nil {
			return 0, nil, nil, nil, err
		}
		ti++

		switch f {
		case isa.FieldByteReg:
			if parsed.tag != tagByteReg {
				return 0, nil, nil, nil, fmt.Errorf("operand %d must be a byte register", i)
			}
			ops[i].Reg = nibble.Nibble(parsed.breg)
		case isa.FieldWideReg:
			// "zero" names both zero registers; parseOperand tags it as the byte one.
			if parsed.tag == tagByteReg && parsed.breg.IsZero() {
				parsed = taggedOperand{tag: tagWideReg, wreg: regs.WZero}
			}
			if parsed.tag != tagWideReg {
				return 0, nil, nil, nil, fmt.Errorf("operand %d must be a wide register", i)
			}
			ops[i].Reg = nibble.Nibble(parsed.wreg)
		case isa.FieldVariant:
			if parsed.tag != tagImmediate {
				return 0, nil, nil, nil, fmt.Errorf("operand %d must be a small integer variant tag", i)
			}
			ops[i].Variant = nibble.Nibble(parsed.imm)
		case isa.FieldImmByte:
			if parsed.tag != tagImmediate {
				return 0, nil, nil, nil, fmt.Errorf("operand %d must be an immediate byte", i)
			}
			ops[i].Imm8 = byte(parsed.imm)
		case isa.FieldImmWide:
			switch parsed.tag {
			case tagImmediate:
				ops[i].Imm16 = uint16(parsed.imm)
			case tagLabel:
				refs = append(refs, labelRef{fieldIdx: i, label: parsed.label})
			default:
				return 0, nil, nil, nil, fmt.Errorf("operand %d must be an immediate word or label", i)
			}
		}
	}
	if ti != len(tokens) {
		return 0, nil, nil, nil, fmt.Errorf("too many operands for %s", mnemonic)
	}
	return op, shape, ops, refs, nil
}

func countNonZero(shape isa.Shape) int {
	n := 0
	for _, f := range shape {
		if f != isa.FieldZero {
			n++
		}
	}
	return n
}

func resolveJump(tokens []string) (isa.Opcode, isa.Shape, []isa.Operand, []labelRef, error) {
	if len(tokens) != 1 {
		return 0, nil, nil, nil, fmt.Errorf("jmp takes exactly one operand")
	}
	parsed, err := parseOperand(tokens[0])
	if err != nil {
		return 0, nil, nil, nil, err
	}
	shape := isa.Shapes[isa.LDI_W]
	ops := make([]isa.Operand, len(shape))
	ops[1].Variant = 1 // variant 1: jump

	switch parsed.tag {
	case tagWideReg:
		ops[0].Reg = nibble.Nibble(parsed.wreg)
		return isa.LDI_W, shape, ops, nil, nil
	case tagImmediate:
		ops[0].Reg = nibble.Nibble(regs.WZero)
		ops[2].Imm16 = uint16(parsed.imm)
		return isa.LDI_W, shape, ops, nil, nil
	case tagLabel:
		ops[0].Reg = nibble.Nibble(regs.WZero)
		return isa.LDI_W, shape, ops, []labelRef{{fieldIdx: 2, label: parsed.label}}, nil
	default:
		return 0, nil, nil, nil, fmt.Errorf("jmp target must be a register, immediate, or label")
	}
}

func (a *Assembler) checkUndefined() error {
	// Collect use-site errors for every patch whose label never got a
	// defined offset, matching source.rs's process(): the returned error
	// chains every use site of one undefined label. When several labels
	// are undefined only one of them is reported, and which one is not
	// defined (map iteration order).
	byLabel := make(map[string][]*Error)
	for _, p := range a.patches {
		l := a.labels[p.label]
		if l == nil || !l.defined {
			byLabel[p.label] = append(byLabel[p.label], &Error{
				Source: a.filename, Line: p.line, Kind: UndefinedLabel,
				Msg: fmt.Sprintf("label %s was never defined, but used here", p.label),
			})
		}
	}
	if len(byLabel) == 0 {
		return nil
	}
	for name, uses := range byLabel {
		return &UndefinedLabelError{Label: name, Uses: uses}
	}
	return nil
}

func (a *Assembler) render() (*image.Image, error) {
	// Apply patches now that every label has its final offset.
	for _, p := range a.patches {
		l := a.labels[p.label]
		a.encoded[p.insIndex].ops[p.fieldIdx].Imm16 = l.offset
	}

	var out []byte
	for _, item := range a.order {
		if item.isRaw {
			out = append(out, a.raw[item.rawLine]...)
			continue
		}
		ins := a.encoded[item.insIndex]
		out = append(out, byte(ins.opcode))
		encoded, err := isa.Encode(ins.shape, ins.ops)
		if err != nil {
			return nil, fmt.Errorf("asm: encoding instruction at offset 0x%04x: %w", ins.offset, err)
		}
		out = append(out, encoded...)
	}

	img := &image.Image{Bytes: out}
	for name, l := range a.labels {
		if l.visibility == image.Reference {
			continue
		}
		if !l.defined {
			continue
		}
		img.Symbols = append(img.Symbols, image.Symbol{Name: name, Visibility: l.visibility, Offset: l.offset})
	}
	img.Entry = a.entry
	return img, nil
}
