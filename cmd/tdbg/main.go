// Command tdbg is telda2's interactive debugger: it loads an assembled
// `.tbin` image (and its `.tsym` sidecar, if present) and single-steps it
// in a bubbletea TUI.
//
// Grounded on _examples/hejops-gone/cpu/debugger.go's Debug entry point,
// restructured around cobra per _examples/oisee-z80-optimizer/cmd/
// z80opt/main.go's command-tree style.
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"telda2/debugger"
	"telda2/engine"
	"telda2/image"
	"telda2/mem"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tdbg <binary.tbin>",
		Short: "Single-step a telda2 binary image",
		Args:  cobra.ExactArgs(1),
		RunE:  runDebug,
	}
	cmd.Flags().Uint16("base", 0, "physical load base for the image")
	return cmd
}

func runDebug(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	binPath := args[0]
	base, _ := cmd.Flags().GetUint16("base")

	bytes, err := os.ReadFile(binPath)
	if err != nil {
		return err
	}

	var symbols []image.Symbol
	var entry *uint16
	symPath := withExt(binPath, ".tsym")
	if symFile, err := os.Open(symPath); err == nil {
		defer symFile.Close()
		symbols, entry, err = image.ReadSymbols(symFile)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("no symbol file found", "path", symPath)
	}

	img := &image.Image{LoadBase: base, Bytes: bytes, Symbols: symbols, Entry: entry}

	eng := engine.New(mem.New())
	return debugger.Run(eng, img, symbols)
}

func withExt(path, ext string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	return trimmed + ext
}
