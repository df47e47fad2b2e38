// Package engine drives telda2's fetch-decode-execute loop and the
// synchronous trap-delivery sequence: detecter of a raised trap.Mode,
// context save, vector lookup, and the double-fault rule (spec.md §4.4).
//
// Grounded on _examples/hejops-gone/cpu/cpu.go's Run loop shape and on
// _examples/other_examples/67ad2527_gmofishsauce-wut4__emul-exec.go.go's
// fetch/trap/double-fault sequencing, adapted from that file's panic-based
// fatal halt into a returned error.
package engine

import (
	"errors"
	"fmt"

	"telda2/cpu"
	"telda2/mem"
	"telda2/trap"
)

// ErrDoubleFault is returned by Step/Run when a trap is raised while
// already inside a trap handler and the new trap is not itself
// deliverable (trap.Mode.Deliverable()), per spec.md §4.4: this halts the
// machine outright.
var ErrDoubleFault = errors.New("engine: double fault")

// Engine owns one Cpu and its attached Memory, and runs instructions
// until a fatal condition (Halt delivered with no handler installed, or a
// double fault) stops it.
type Engine struct {
	Cpu *cpu.Cpu
	Mem *mem.Memory
}

// New attaches a fresh Cpu to m. The trap vector table is read directly
// out of m at delivery time (SPEC_FULL.md "Trap vector table placement"),
// so it need not be loaded before New is called — only before the first
// trap that uses it.
func New(m *mem.Memory) *Engine {
	return &Engine{Cpu: cpu.New(m), Mem: m}
}

// Step executes exactly one instruction, delivering any trap it raises.
// It returns the trap mode that was raised (trap.None if the instruction
// completed cleanly and trap.Halt/trap.SysCall if a handler caught it,
// exactly as spec.md §4.4 designs deliverable traps to still surface to
// the caller after entry), or an error if the machine halted fatally.
func (e *Engine) Step() (trap.Mode, error) {
	err := cpu.Execute(e.Cpu)
	if err == nil {
		return trap.None, nil
	}

	mode, ok := err.(trap.Mode)
	if !ok {
		return trap.None, fmt.Errorf("engine: non-trap error from execute: %w", err)
	}
	if mode == trap.None {
		return trap.None, nil
	}

	if err := e.deliver(mode); err != nil {
		return mode, err
	}
	return mode, nil
}

// deliver performs the synchronous trap-entry sequence: on a double
// fault it returns ErrDoubleFault instead of entering a handler.
//
// The trap frame is pushed before Flags.Trap/UserMode are mutated, even
// though spec.md §4.4 lists "switch to supervisor mode" as step 2 and
// "push the saved register set" as step 3: pushing the pre-mutation flags
// is the only way RETH can restore the exact pre-trap privilege state, as
// spec.md §8's trap-symmetry property requires. Pushing the already-
// mutated flags would permanently lose the interrupted mode bits.
func (e *Engine) deliver(mode trap.Mode) error {
	c := e.Cpu
	if c.Flags.Trap && !mode.Deliverable() {
		return fmt.Errorf("%w: %s while already trapped", ErrDoubleFault, mode)
	}

	if err := c.PushTrapFrame(); err != nil {
		return fmt.Errorf("engine: pushing trap frame for %s: %w", mode, err)
	}

	c.Flags.Trap = true
	c.Flags.UserMode = false

	vector, err := e.Mem.PhysicalReadWide(uint32(mode) * 2)
	if err != nil {
		return fmt.Errorf("engine: reading trap vector %s: %w", mode, err)
	}
	c.SetPC(vector)
	return nil
}

// Run steps the engine until a host-level error surfaces: typically
// ErrDoubleFault, which is exactly what happens when HALT (or any other
// trap) fires with no real handler installed at its vector — the
// delivered vector is unprogrammed, control falls back into untrapped
// memory, and the next trap it raises (ordinarily trap.Invalid, reading a
// zeroed NULL opcode) cannot be delivered while already trapped. Programs
// that install real handlers keep running until their own handler halts
// the loop by some other means (spec.md leaves what "stops" a running
// machine with handlers installed up to the program itself).
func (e *Engine) Run() (trap.Mode, error) {
	for {
		mode, err := e.Step()
		if err != nil {
			return mode, err
		}
	}
}
