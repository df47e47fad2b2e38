// Command tc is telda2's assembler driver: for each source file given on
// the command line, it assembles the file and writes a `.tbin` binary and
// a `.tsym` symbol sidecar next to it.
//
// Grounded on original_source/src/bin/tc.rs's per-file loop (assemble,
// write .tbin, write .tsym, warn on a missing _start, keep going on error
// and report overall failure at the end), restructured around cobra per
// _examples/oisee-z80-optimizer/cmd/z80opt/main.go's command-tree style
// since the teacher repo has no cmd/ of its own.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"telda2/asm"
	"telda2/image"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tc [source files...]",
		Short: "Assemble telda2 source files into .tbin/.tsym pairs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAssemble,
	}
	cmd.Flags().Bool("verbose", false, "log each assembled file's byte and symbol counts")
	return cmd
}

func runAssemble(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	failed := false
	for _, arg := range args {
		if err := assembleOne(logger, arg); err != nil {
			logger.Error("assemble failed", "file", arg, "err", err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("tc: one or more files failed to assemble")
	}
	return nil
}

func assembleOne(logger *log.Logger, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	img, err := asm.Assemble(string(src), path, nil)
	if err != nil {
		return err
	}
	logger.Debug("assembled", "file", path, "bytes", len(img.Bytes), "symbols", len(img.Symbols))

	binPath := withExt(path, ".tbin")
	binFile, err := os.Create(binPath)
	if err != nil {
		return err
	}
	defer binFile.Close()
	if err := img.WriteBinary(binFile); err != nil {
		return err
	}
	fmt.Printf("Wrote binary to %s\n", binPath)

	symPath := withExt(path, ".tsym")
	symFile, err := os.Create(symPath)
	if err != nil {
		return err
	}
	defer symFile.Close()
	if err := img.WriteSymbols(symFile); err != nil {
		return err
	}
	fmt.Printf("Wrote symbols to %s\n", symPath)

	if !image.HasStart(img.Symbols) {
		logger.Warn("no _start symbol", "file", path)
	}
	return nil
}

func withExt(path, ext string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	return trimmed + ext
}
