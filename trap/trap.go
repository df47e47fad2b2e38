// Package trap defines telda2's trap kinds: the synchronous faults an
// opcode handler can raise, and the mode-switch discipline that delivers
// them (spec.md §4.4).
//
// Grounded on original_source/src/blf4/isa/handlers.rs's TrapMode/OpRes
// shape (translated from a Result<T, TrapMode> hot path into an error
// return: handlers return nil when they do not trap and a Mode, which
// implements error, when they do) and on
// _examples/other_examples/67ad2527_gmofishsauce-wut4__emul-exec.go.go's
// fetch()/double-fault handling for the mode-switch sequencing.
package trap

import "fmt"

// A Mode identifies why an instruction trapped. The zero value, None,
// means the instruction completed without trapping.
type Mode uint8

const (
	None Mode = iota
	Invalid
	Halt
	SysCall
	ZeroDiv
	IllegalOperation
	IllegalHandlerReturn
	PageFault
	MemoryFault

	// VectorCount is the number of trap vectors reserved at the bottom of
	// physical memory (SPEC_FULL.md "Trap vector table placement").
	VectorCount
)

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Invalid:
		return "invalid"
	case Halt:
		return "halt"
	case SysCall:
		return "syscall"
	case ZeroDiv:
		return "zero-div"
	case IllegalOperation:
		return "illegal-operation"
	case IllegalHandlerReturn:
		return "illegal-handler-return"
	case PageFault:
		return "page-fault"
	case MemoryFault:
		return "memory-fault"
	default:
		return fmt.Sprintf("trap.Mode(%d)", uint8(m))
	}
}

// Error lets a Mode satisfy the error interface, so it composes with
// errors.Is/errors.As when surfaced past the engine boundary (e.g. when a
// double fault terminates execution and the host wants a Go error).
func (m Mode) Error() string {
	return "trap: " + m.String()
}

// Deliverable reports whether this trap kind may still be delivered to a
// handler while already executing a trap handler. spec.md §4.4: "If
// already in trap mode and the trap is not a hard fault (Halt, SysCall are
// deliverable; double faults are fatal), halt."
func (m Mode) Deliverable() bool {
	return m == Halt || m == SysCall
}
