package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/funvibe/implicits/internal/config"
	"github.com/funvibe/implicits/internal/pipeline"
	"github.com/funvibe/implicits/internal/report"
)

type mode int

const (
	modeCheck mode = iota
	modeLower
	modeExplain
)

func (m mode) String() string {
	switch m {
	case modeLower:
		return "lower"
	case modeExplain:
		return "explain"
	default:
		return "check"
	}
}

var modeHelp = map[mode]string{
	modeCheck:   "Resolve implicit arguments and report diagnostics",
	modeLower:   "Resolve implicit arguments and print the lowered code",
	modeExplain: "Resolve implicit arguments and print the chosen candidate trees",
}

func createUnitCmd(m mode) *cobra.Command {
	return &cobra.Command{
		Use:   m.String() + " <unit.yaml|dir>...",
		Short: modeHelp[m],
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := expandUnits(args)
			if err != nil {
				return err
			}

			var results []*pipeline.PipelineContext
			failed := false
			for _, path := range paths {
				ctx, err := runUnit(path, m)
				if err != nil {
					return err
				}
				failed = failed || ctx.HasErrors()
				results = append(results, ctx)
			}

			color := colorMode
			if color == "" {
				color = results[0].Options.Color
			}
			out := newPrinter(cmd.OutOrStdout(), color)
			if err := out.render(results, m, format); err != nil {
				return err
			}
			if failed {
				return errDiagnostics
			}
			return nil
		},
	}
}

// expandUnits replaces directory arguments with the manifests they
// contain.
func expandUnits(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		found := false
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !config.IsManifest(name) || name == config.DefaultConfigName || name == config.AlternateConfigName {
				continue
			}
			paths = append(paths, filepath.Join(arg, name))
			found = true
		}
		if !found {
			return nil, fmt.Errorf("no compilation units in %s", arg)
		}
	}
	return paths, nil
}

// unitOptions returns the configuration governing the unit at path.
func unitOptions(path string) (*config.Options, error) {
	file := configPath
	if file == "" {
		found, err := config.FindOptions(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		file = found
	}

	opts := config.Default()
	if file != "" {
		loaded, err := config.LoadOptions(file)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}
	if reportPath != "" {
		opts.Report.Path = reportPath
	}
	if colorMode != "" {
		opts.Color = colorMode
	}
	return opts, nil
}

func runUnit(path string, m mode) (*pipeline.PipelineContext, error) {
	opts, err := unitOptions(path)
	if err != nil {
		return nil, err
	}

	processors := []pipeline.Processor{&pipeline.LoadProcessor{}, &pipeline.CheckProcessor{}}
	if m == modeLower {
		processors = append(processors, &pipeline.LowerProcessor{})
	}
	if opts.Report.Path != "" {
		store, err := report.Open(opts.Report.Path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		processors = append(processors, &pipeline.ReportProcessor{Store: store})
	}

	ctx := pipeline.NewPipelineContext(path, opts)
	ctx.Logger = slog.Default().With(slog.String("unit", path))
	ctx = pipeline.New(processors...).Run(ctx)
	if ctx.Fatal != nil {
		ctx.Logger.Error("unit abandoned", slog.Any("error", ctx.Fatal))
	}
	if opts.Report.Path != "" && ctx.RunID == "" {
		return nil, fmt.Errorf("%s: run was not recorded in %s", path, opts.Report.Path)
	}
	return ctx, nil
}
