package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"zenc/internal/buildpipeline"
	"zenc/internal/project"
)

var emitCmd = &cobra.Command{
	Use:   "emit [flags] [unit]",
	Short: "Print the LLVM IR of one unit",
	Long:  "Compile a single unit and print its LLVM IR to stdout. Without an argument the manifest's main unit is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  emitExecution,
}

func init() {
	emitCmd.Flags().String("target", "", "target triple (default from zen.toml or \""+project.DefaultTarget+"\")")
}

func emitExecution(cmd *cobra.Command, args []string) error {
	opts, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	unit, err := singleUnit(args, (*project.Manifest).MainPath)
	if err != nil {
		return err
	}
	target, _ := cmd.Flags().GetString("target")
	if target == "" {
		target = project.DefaultTarget
		if m, found, _ := project.Load("."); found {
			target = m.Config.Build.Target
		}
	}

	res, err := buildpipeline.Build(cmd.Context(), &buildpipeline.BuildRequest{
		Units:          []string{unit},
		Target:         target,
		MaxDiagnostics: opts.maxDiagnostics,
	})
	if err != nil && !errors.Is(err, buildpipeline.ErrBuildFailed) {
		return err
	}
	u := res.Units[0]
	// IR goes to stdout, so JSON diagnostics go to stderr here
	if perr := printDiagnostics(cmd, cmd.ErrOrStderr(), opts, u.Bag, res.FileSet); perr != nil {
		return perr
	}
	if err != nil {
		return exitError{code: 1}
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), u.IR)
	return err
}
