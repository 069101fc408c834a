package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// errDiagnostics is returned when a unit produced diagnostics that were
// already printed.
var errDiagnostics = errors.New("compilation unit has errors")

var (
	configPath string
	reportPath string
	format     string
	colorMode  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "implicitc",
	Short: "Implicit argument resolver",
	Long: `implicitc resolves the implicit parameters of the call sites declared in
compilation unit manifests, reports coherence violations and lowers the
chosen instances to instruction sequences.

Examples:
  # Check a unit
  implicitc check unit.yaml

  # Show the candidate tree chosen for every requirement
  implicitc explain unit.yaml

  # Print the lowered code and record the run
  implicitc lower --report runs.db unit.yaml`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to implicits.yaml (default: searched upwards from the unit)")
	rootCmd.PersistentFlags().StringVar(&reportPath, "report", "", "SQLite database recording resolution runs")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text or json")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "", "Colour output: auto, always or never")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Trace resolution decisions")

	rootCmd.AddCommand(createUnitCmd(modeCheck))
	rootCmd.AddCommand(createUnitCmd(modeLower))
	rootCmd.AddCommand(createUnitCmd(modeExplain))
	rootCmd.AddCommand(createHistoryCmd())
}

func setup(cmd *cobra.Command, args []string) error {
	switch format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
	switch colorMode {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", colorMode)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
