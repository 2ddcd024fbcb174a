package main

import (
	"errors"

	"github.com/spf13/cobra"

	"zenc/internal/buildpipeline"
	"zenc/internal/observ"
	"zenc/internal/project"
	"zenc/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [unit]",
	Short: "Compile a unit and interpret its main",
	Long: `Compile a unit and execute main in the built-in interpreter. zenc exits with
the program's status. Without an argument the manifest's [run].main is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExecution,
}

func init() {
	runCmd.Flags().Int("max-steps", 0, "instruction budget before the program is stopped (0 = default)")
	runCmd.Flags().Int("max-depth", 0, "call depth before a stack overflow trap (0 = default)")
}

func runExecution(cmd *cobra.Command, args []string) error {
	opts, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	unit, err := singleUnit(args, (*project.Manifest).MainPath)
	if err != nil {
		return err
	}
	maxSteps, err := cmd.Flags().GetInt("max-steps")
	if err != nil {
		return err
	}
	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return err
	}
	var timer *observ.Timer
	if opts.timings {
		timer = observ.NewTimer()
	}

	res, err := buildpipeline.Run(cmd.Context(), &buildpipeline.RunRequest{
		Unit:           unit,
		Target:         project.DefaultTarget,
		MaxDiagnostics: opts.maxDiagnostics,
		Runtime:        vm.NewDefaultRuntime(),
		VM:             vm.Options{MaxSteps: maxSteps, MaxDepth: maxDepth},
		Timer:          timer,
	})
	if perr := printDiagnostics(cmd, cmd.ErrOrStderr(), opts, res.Bag, res.FileSet); perr != nil {
		return perr
	}
	if opts.timings {
		printStageTimings(cmd.ErrOrStderr(), res.Timings, timer)
	}
	if errors.Is(err, buildpipeline.ErrBuildFailed) {
		return exitError{code: 1}
	}
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return exitError{code: res.ExitCode}
	}
	return nil
}
