package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zenc/internal/driver"
	"zenc/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build output and the IR cache",
	Long:  "Remove the manifest's output directory (or ./build) and drop every entry of the user IR cache.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().Bool("cache-only", false, "keep the output directory")
}

func runClean(cmd *cobra.Command, _ []string) error {
	cacheOnly, err := cmd.Flags().GetBool("cache-only")
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	say := func(format string, args ...any) {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), format, args...)
		}
	}

	if !cacheOnly {
		outDir, root := project.DefaultOutDir, ""
		if m, found, err := project.Load("."); err != nil {
			return err
		} else if found {
			outDir, root = m.OutDir(), m.Root
		}
		info, err := os.Stat(outDir)
		switch {
		case errors.Is(err, os.ErrNotExist):
			say("output directory not found\n")
		case err != nil:
			return fmt.Errorf("failed to stat %q: %w", outDir, err)
		case !info.IsDir():
			return fmt.Errorf("%q is not a directory", outDir)
		default:
			if err := os.RemoveAll(outDir); err != nil {
				return fmt.Errorf("failed to remove %q: %w", outDir, err)
			}
			say("removed %s\n", formatPathForOutput(root, outDir))
		}
	}

	cache, err := driver.OpenDiskCache("zenc")
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clean IR cache: %w", err)
	}
	say("IR cache cleared\n")
	return nil
}
