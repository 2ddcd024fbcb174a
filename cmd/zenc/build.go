package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"zenc/internal/buildpipeline"
	"zenc/internal/diag"
	"zenc/internal/driver"
	"zenc/internal/observ"
	"zenc/internal/project"
)

const noManifestMessage = "no units given and no " + project.ManifestName + " found (run `zenc init` or pass .zast files)"

var buildCmd = &cobra.Command{
	Use:   "build [flags] [units...]",
	Short: "Compile units to LLVM IR",
	Long: `Compile .zast units to textual LLVM IR, one .ll file per unit in the output
directory. Without arguments the units listed in zen.toml are built.`,
	RunE: buildExecution,
}

func init() {
	buildCmd.Flags().StringP("out", "o", "", "output directory (default from zen.toml or \""+project.DefaultOutDir+"\")")
	buildCmd.Flags().String("target", "", "target triple (default from zen.toml or \""+project.DefaultTarget+"\")")
	buildCmd.Flags().IntP("jobs", "j", 0, "units compiled in parallel (0 = GOMAXPROCS)")
	buildCmd.Flags().Bool("no-cache", false, "bypass the IR cache")
}

// buildSettings is the merged view of zen.toml and command-line flags.
type buildSettings struct {
	units  []string
	outDir string
	target string
	jobs   int
	root   string
}

// resolveBuildSettings applies flags over the manifest found above the working
// directory. Flags win; args replace the manifest's unit list.
func resolveBuildSettings(cmd *cobra.Command, args []string) (buildSettings, error) {
	var s buildSettings
	manifest, found, err := project.Load(".")
	if err != nil {
		return s, err
	}
	if found {
		s.root = manifest.Root
		s.units = manifest.UnitPaths()
		s.outDir = manifest.OutDir()
		s.target = manifest.Config.Build.Target
	}
	if len(args) > 0 {
		s.units = args
	}
	if len(s.units) == 0 {
		return s, errors.New(noManifestMessage)
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		s.outDir = out
	}
	if target, _ := cmd.Flags().GetString("target"); target != "" {
		s.target = target
	}
	if s.outDir == "" {
		s.outDir = project.DefaultOutDir
	}
	if s.target == "" {
		s.target = project.DefaultTarget
	}
	if s.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return s, err
	}
	if s.jobs < 0 {
		return s, fmt.Errorf("--jobs must not be negative")
	}
	return s, nil
}

func openCache(cmd *cobra.Command, quiet bool) *driver.DiskCache {
	if off, _ := cmd.Flags().GetBool("no-cache"); off {
		return nil
	}
	cache, err := driver.OpenDiskCache("zenc")
	if err != nil {
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: IR cache disabled: %v\n", err)
		}
		return nil
	}
	return cache
}

func buildExecution(cmd *cobra.Command, args []string) error {
	opts, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	settings, err := resolveBuildSettings(cmd, args)
	if err != nil {
		return err
	}

	var timer *observ.Timer
	if opts.timings {
		timer = observ.NewTimer()
	}
	req := buildpipeline.BuildRequest{
		Units:          settings.units,
		OutDir:         settings.outDir,
		Target:         settings.target,
		Jobs:           settings.jobs,
		MaxDiagnostics: opts.maxDiagnostics,
		Cache:          openCache(cmd, opts.quiet),
		Timer:          timer,
	}

	var res buildpipeline.BuildResult
	if shouldUseTUI(opts.ui) && !opts.quiet && opts.format == formatPretty {
		res, err = runBuildWithUI(cmd.Context(), "zenc build", &req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), &req)
	}
	if err != nil && !errors.Is(err, buildpipeline.ErrBuildFailed) {
		return err
	}

	bags := make([]*diag.Bag, 0, len(res.Units))
	for _, u := range res.Units {
		bags = append(bags, u.Bag)
	}
	if perr := printDiagnostics(cmd, cmd.OutOrStdout(), opts, mergeBags(opts.maxDiagnostics, bags...), res.FileSet); perr != nil {
		return perr
	}
	if opts.timings {
		printStageTimings(cmd.ErrOrStderr(), res.Timings, timer)
	}
	if err != nil {
		return exitError{code: 1}
	}
	if !opts.quiet && opts.format == formatPretty {
		for _, u := range res.Units {
			suffix := ""
			if u.Cached {
				suffix = " (cached)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built %s%s\n", formatPathForOutput(settings.root, u.OutPath), suffix)
		}
	}
	return nil
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func singleUnit(args []string, fallback func(*project.Manifest) string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	manifest, found, err := project.Load(".")
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.New(noManifestMessage)
	}
	return fallback(manifest), nil
}
