package cpu

import "telda2/trap"

// invalidOpcode backs every unassigned table slot, matching
// original_source/src/blf4/isa/handlers.rs's `fn n`.
func invalidOpcode(c *Cpu) error { return trap.Invalid }

func doHalt(c *Cpu) error    { return trap.Halt }
func doSyscall(c *Cpu) error { return trap.SysCall }
func doNop(c *Cpu) error     { return nil }

// doCtf clears the trap flag without restoring saved context: "clear trap
// flag", used by a handler that wants to re-enable nested traps before it
// finishes (spec.md §4.4).
func doCtf(c *Cpu) error {
	c.Flags.Trap = false
	return nil
}

// doReth returns from a trap handler: it is only legal while Flags.Trap is
// set, and it restores the interrupted register file, flags, and PC by
// popping the trap frame pushed at trap entry.
func doReth(c *Cpu) error {
	if !c.Flags.Trap {
		return trap.IllegalHandlerReturn
	}
	if err := c.PopTrapFrame(); err != nil {
		return err
	}
	c.Flags.Trap = false
	return nil
}

func doUsr(c *Cpu) error {
	if c.Flags.UserMode {
		return trap.IllegalOperation
	}
	c.Flags.UserMode = true
	return nil
}

func doVmon(c *Cpu) error {
	if c.Flags.UserMode {
		return trap.IllegalOperation
	}
	c.Flags.VirtualMode = true
	return nil
}

func doVmoff(c *Cpu) error {
	if c.Flags.UserMode {
		return trap.IllegalOperation
	}
	c.Flags.VirtualMode = false
	return nil
}
