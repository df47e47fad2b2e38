package cpu

import "telda2/isa"

// OpHandler executes one decoded instruction body against c, fetching its
// own operands via c (which implements isa.Fetcher). It returns nil on
// success and otherwise a trap.Mode, never a plain error, matching
// original_source/src/blf4/isa/handlers.rs's OpRes = Result<T, TrapMode>.
type OpHandler func(c *Cpu) error

// handlers is the fixed 256-entry dispatch table, built once at package
// init and never mutated afterward. spec.md §9 explicitly rules out a
// hashmap or string-keyed switch on the fetch-decode-execute hot path;
// this mirrors original_source/src/blf4/isa/handlers.rs's OP_HANDLERS
// array, itself an array of 256 function pointers defaulting to the
// "invalid opcode" handler.
var handlers [256]OpHandler

func init() {
	for i := range handlers {
		handlers[i] = invalidOpcode
	}

	handlers[isa.NULL] = invalidOpcode
	handlers[isa.HALT] = doHalt
	handlers[isa.NOP] = doNop
	handlers[isa.SYSCALL] = doSyscall
	handlers[isa.CTF] = doCtf
	handlers[isa.RETH] = doReth
	handlers[isa.USR] = doUsr
	handlers[isa.VMON] = doVmon
	handlers[isa.VMOFF] = doVmoff

	handlers[isa.PSTORE] = doPstore
	handlers[isa.PLOAD] = doPload

	handlers[isa.PUSH_B] = doPushB
	handlers[isa.PUSH_W] = doPushW
	handlers[isa.POP_B] = doPopB
	handlers[isa.POP_W] = doPopW
	handlers[isa.CALL] = doCall
	handlers[isa.RET] = doRet

	handlers[isa.STORE_BI] = doStoreBI
	handlers[isa.STORE_WI] = doStoreWI
	handlers[isa.STORE_BR] = doStoreBR
	handlers[isa.STORE_WR] = doStoreWR
	handlers[isa.LOAD_BI] = doLoadBI
	handlers[isa.LOAD_WI] = doLoadWI
	handlers[isa.LOAD_BR] = doLoadBR
	handlers[isa.LOAD_WR] = doLoadWR

	handlers[isa.JEZ] = doJez
	handlers[isa.JNZ] = doJnz
	handlers[isa.JLT] = doJlt
	handlers[isa.JLE] = doJle
	handlers[isa.JGT] = doJgt
	handlers[isa.JGE] = doJge
	handlers[isa.JO] = doJo
	handlers[isa.JNO] = doJno
	handlers[isa.JA] = doJa
	handlers[isa.JAE] = doJae
	handlers[isa.JB] = doJb
	handlers[isa.JBE] = doJbe

	handlers[isa.LDI_B] = doLdiB
	handlers[isa.LDI_W] = doLdiW

	handlers[isa.ADD_B] = doAddB
	handlers[isa.ADD_W] = doAddW
	handlers[isa.SUB_B] = doSubB
	handlers[isa.SUB_W] = doSubW
	handlers[isa.AND_B] = doAndB
	handlers[isa.AND_W] = doAndW
	handlers[isa.OR_B] = doOrB
	handlers[isa.OR_W] = doOrW
	handlers[isa.XOR_B] = doXorB
	handlers[isa.XOR_W] = doXorW
	handlers[isa.SHL_B] = doShlB
	handlers[isa.SHL_W] = doShlW
	handlers[isa.ASR_B] = doAsrB
	handlers[isa.ASR_W] = doAsrW
	handlers[isa.LSR_B] = doLsrB
	handlers[isa.LSR_W] = doLsrW

	handlers[isa.MUL_B] = doMulB
	handlers[isa.MUL_W] = doMulW
	handlers[isa.DIV_B] = doDivB
	handlers[isa.DIV_W] = doDivW
}

// Execute fetches one opcode byte and dispatches it through the fixed
// table, returning any trap the handler raised. A nil return means no
// trap: invalidOpcode and all fault paths return a trap.Mode, which
// implements error.
func Execute(c *Cpu) error {
	opByte, err := c.Fetch()
	if err != nil {
		return err
	}
	return handlers[opByte](c)
}
