// Command zenc compiles Zen .zast units to LLVM IR and interprets them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"zenc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "zenc",
	Short:         "Zen ahead-of-time compiler",
	Long:          `zenc turns Zen compilation units (.zast) into textual LLVM IR.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		if err := setupProfiling(cmd); err != nil {
			return err
		}
		return setupTracing(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeTracing(cmd)
		stopProfiling(cmd)
	},
}

// exitError carries a process exit status. Diagnostics have already been
// printed when it is returned.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("format", "pretty", "output format (pretty|json)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-out", "", "trace output file (default stderr)")
	pf.String("ui", "auto", "progress interface (auto|on|off)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}

func main() {
	os.Exit(execute())
}

func execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	// PersistentPostRun is skipped when RunE fails
	closeTracing(rootCmd)
	stopProfiling(rootCmd)
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(os.Stderr, "zenc: %v\n", err)
	return 1
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
