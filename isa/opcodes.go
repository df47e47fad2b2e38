// Package isa defines telda2's instruction-set encoding: the opcode byte
// values, the shared operand-decoding primitives every handler uses to
// pull registers and immediates off the instruction stream, and the
// per-opcode shape metadata the assembler's encoder needs to be the
// decoder's exact inverse (spec.md §4.1, §4.5, §8).
//
// The decoding primitives mirror
// original_source/src/blf4/isa/handlers.rs's arg_pair/arg_imm_byte/
// arg_imm_wide free functions; the opcode byte values themselves are an
// implementation choice (spec.md fixes only the operand-byte layout, not
// the numeric opcode assignment) grouped by mnemonic family the way
// original_source/src/standard16.rs groups its own opcode space.
package isa

// Opcode identifies one of the 256 possible leading instruction bytes.
type Opcode byte

// Control.
const (
	NULL Opcode = iota
	HALT
	NOP
	SYSCALL
	CTF
	RETH
	USR
	VMON
	VMOFF
)

// Privileged memory.
const (
	PSTORE Opcode = iota + 0x09
	PLOAD
)

// Stack & flow.
const (
	PUSH_B Opcode = iota + 0x0B
	PUSH_W
	POP_B
	POP_W
	CALL
	RET
)

// Load/store.
const (
	STORE_BI Opcode = iota + 0x11
	STORE_WI
	STORE_BR
	STORE_WR
	LOAD_BI
	LOAD_WI
	LOAD_BR
	LOAD_WR
)

// Conditional jumps.
const (
	JEZ Opcode = iota + 0x19
	JNZ
	JLT
	JLE
	JGT
	JGE
	JO
	JNO
	JA
	JAE
	JB
	JBE
)

// Immediate load (and, for LDI_W, the fused unconditional jump).
const (
	LDI_B Opcode = iota + 0x25
	LDI_W
)

// Arithmetic/logic, byte and wide width.
const (
	ADD_B Opcode = iota + 0x27
	ADD_W
	SUB_B
	SUB_W
	AND_B
	AND_W
	OR_B
	OR_W
	XOR_B
	XOR_W
	SHL_B
	SHL_W
	ASR_B
	ASR_W
	LSR_B
	LSR_W
)

// MUL/DIV.
const (
	MUL_B Opcode = iota + 0x37
	MUL_W
	DIV_B
	DIV_W
)

// Mnemonics maps every assigned opcode to its assembly mnemonic, used by
// the assembler's parser through Lookup.
var Mnemonics = map[Opcode]string{
	NULL: "null", HALT: "halt", NOP: "nop", SYSCALL: "syscall",
	CTF: "ctf", RETH: "reth", USR: "usr", VMON: "vmon", VMOFF: "vmoff",

	PSTORE: "pstore", PLOAD: "pload",

	PUSH_B: "push_b", PUSH_W: "push_w", POP_B: "pop_b", POP_W: "pop_w",
	CALL: "call", RET: "ret",

	STORE_BI: "store_bi", STORE_WI: "store_wi",
	STORE_BR: "store_br", STORE_WR: "store_wr",
	LOAD_BI: "load_bi", LOAD_WI: "load_wi",
	LOAD_BR: "load_br", LOAD_WR: "load_wr",

	JEZ: "jez", JNZ: "jnz", JLT: "jlt", JLE: "jle", JGT: "jgt", JGE: "jge",
	JO: "jo", JNO: "jno", JA: "ja", JAE: "jae", JB: "jb", JBE: "jbe",

	LDI_B: "ldi_b", LDI_W: "ldi_w",

	ADD_B: "add_b", ADD_W: "add_w", SUB_B: "sub_b", SUB_W: "sub_w",
	AND_B: "and_b", AND_W: "and_w", OR_B: "or_b", OR_W: "or_w",
	XOR_B: "xor_b", XOR_W: "xor_w", SHL_B: "shl_b", SHL_W: "shl_w",
	ASR_B: "asr_b", ASR_W: "asr_w", LSR_B: "lsr_b", LSR_W: "lsr_w",

	MUL_B: "mul_b", MUL_W: "mul_w", DIV_B: "div_b", DIV_W: "div_w",
}

// byMnemonic is built lazily from Mnemonics for the assembler's parser.
var byMnemonic map[string]Opcode

// Lookup returns the opcode for a mnemonic, case-sensitive, and whether it
// was found.
func Lookup(mnemonic string) (Opcode, bool) {
	if byMnemonic == nil {
		byMnemonic = make(map[string]Opcode, len(Mnemonics))
		for op, name := range Mnemonics {
			byMnemonic[name] = op
		}
	}
	op, ok := byMnemonic[mnemonic]
	return op, ok
}
