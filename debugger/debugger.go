// Package debugger implements telda2's interactive single-step TUI: a
// bubbletea program showing a page of memory around the program counter,
// the register file and flags, and the raw state of the instruction about
// to execute.
//
// Grounded on _examples/hejops-gone/cpu/debugger.go's model/Init/Update/
// View shape (6502 single-stepper), adapted from that CPU's fixed
// accumulator/X/Y register set to telda2's full regs.File, and from its
// program-load-on-Init step to loading a pre-built image.Image.
package debugger

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"telda2/engine"
	"telda2/image"
	"telda2/isa"
	"telda2/regs"
)

type model struct {
	eng     *engine.Engine
	symbols []image.Symbol

	prevPC uint16
	mode   string // last trap mode name, empty if none
	err    error
}

// Init is the first function bubbletea calls. The engine already has its
// image loaded by Run, so there is nothing left to do here.
func (m model) Init() tea.Cmd {
	return nil
}

// Update steps the engine by one instruction on space/j, and quits on q or
// a fatal engine error.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.eng.Cpu.PC()
			trapped, err := m.eng.Step()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			if trapped != 0 {
				m.mode = trapped.String()
			} else {
				m.mode = ""
			}
		}
	}
	return m, nil
}

const bytesPerRow = 16

// renderRow renders one 16-byte row of physical memory starting at start,
// highlighting the current PC if it falls within the row.
func (m model) renderRow(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := 0; i < bytesPerRow; i++ {
		addr := start + uint16(i)
		b, err := m.eng.Mem.PhysicalRead(uint32(addr))
		if err != nil {
			s += " ?? "
			continue
		}
		if addr == m.eng.Cpu.PC() {
			s += fmt.Sprintf("[%02x]", b)
		} else {
			s += fmt.Sprintf(" %02x ", b)
		}
	}
	return s
}

// memoryPane renders the five 16-byte rows straddling the current PC.
func (m model) memoryPane() string {
	rows := []string{"addr | " + " 0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f"}
	base := m.eng.Cpu.PC() - (m.eng.Cpu.PC() % bytesPerRow)
	for i := -2; i <= 2; i++ {
		start := base + uint16(i*bytesPerRow)
		rows = append(rows, m.renderRow(start))
	}
	return strings.Join(rows, "\n")
}

// status renders the register file, flags, and last trap delivered.
func (m model) status() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pc: %#04x (was %#04x)\n", m.eng.Cpu.PC(), m.prevPC)
	for _, w := range []regs.Wide{regs.A, regs.B, regs.C, regs.X, regs.Y, regs.Z, regs.D, regs.E, regs.F} {
		fmt.Fprintf(&sb, "%s: %#04x  ", w, m.eng.Cpu.Regs.ReadWide(w))
	}
	fmt.Fprintln(&sb)
	fmt.Fprintf(&sb, "s: %#04x  link: %#04x  base: %#02x  pt: %#04x\n",
		m.eng.Cpu.Regs.ReadWide(regs.S), m.eng.Cpu.Regs.ReadWide(regs.Link),
		byte(m.eng.Cpu.Regs.ReadWide(regs.Base)), m.eng.Cpu.Regs.ReadWide(regs.Pt))

	flags := m.eng.Cpu.Flags
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"z", flags.Zero}, {"s", flags.Sign}, {"c", flags.Carry}, {"o", flags.Overflow},
		{"trap", flags.Trap}, {"usr", flags.UserMode}, {"vm", flags.VirtualMode},
	} {
		if f.set {
			sb.WriteString(strings.ToUpper(f.name) + " ")
		} else {
			sb.WriteString(f.name + " ")
		}
	}
	fmt.Fprintln(&sb)
	if m.mode != "" {
		fmt.Fprintf(&sb, "last trap: %s\n", m.mode)
	}
	return sb.String()
}

func (m model) symbolAt(addr uint16) string {
	for _, s := range m.symbols {
		if s.Offset == addr {
			return s.Name
		}
	}
	return ""
}

// View renders the full TUI frame: a memory pane beside the status pane,
// and a raw dump of the opcode about to execute.
func (m model) View() string {
	label := m.symbolAt(m.eng.Cpu.PC())
	if label != "" {
		label = " @ " + label
	}
	opcode, _ := m.eng.Mem.PhysicalRead(uint32(m.eng.Cpu.PC()))
	return lipgloss.JoinVertical(
		lipgloss.Left,
		label,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.memoryPane(),
			"   "+m.status(),
		),
		"",
		spew.Sdump(isa.Opcode(opcode)),
	)
}

// Run loads img into eng's memory at its load base and starts the
// interactive single-stepper. symbols, if non-nil, is used to annotate
// the current instruction with its label when one is known.
func Run(eng *engine.Engine, img *image.Image, symbols []image.Symbol) error {
	if err := eng.Mem.LoadAt(uint32(img.LoadBase), img.Bytes); err != nil {
		return err
	}
	eng.Cpu.SetPC(img.LoadBase)
	if img.Entry != nil {
		eng.Cpu.SetPC(*img.Entry)
	}

	final, err := tea.NewProgram(model{eng: eng, symbols: symbols}).Run()
	if err != nil {
		return err
	}
	m := final.(model)
	if m.err != nil {
		return m.err
	}
	return nil
}
