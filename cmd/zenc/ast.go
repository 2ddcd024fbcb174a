package main

import (
	"github.com/spf13/cobra"

	"zenc/internal/ast"
	"zenc/internal/diagfmt"
)

var astCmd = &cobra.Command{
	Use:   "ast [flags] <unit>",
	Short: "Print the syntax tree of a unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readGlobalOptions(cmd)
		if err != nil {
			return err
		}
		unit, err := ast.ReadUnitFile(args[0])
		if err != nil {
			return err
		}
		if opts.format == formatJSON {
			return diagfmt.FormatASTJSON(cmd.OutOrStdout(), unit)
		}
		return diagfmt.FormatASTPretty(cmd.OutOrStdout(), unit)
	},
}
