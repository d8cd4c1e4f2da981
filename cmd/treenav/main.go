// Command treenav is the path language's CLI: it parses its single
// positional argument as a program (one or more ';'-separated
// statements), evaluates each against its own starter, and either
// pretty-prints the first match or applies an assignment. Wired the way
// cmd/nerd/main.go wires its root command: a persistent --verbose flag
// that bumps a zap logger to DebugLevel and also flips treenav's own
// process-wide debug flag.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"treenav/internal/logging"
	"treenav/internal/program"
)

var (
	verbose      bool
	printDepth   int
	printBreadth int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "treenav [-v] [-d DEPTH] [-b BREADTH] [--] <program>",
	Short: "evaluate a tree-navigation path program",
	Args:  cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		logging.SetDebug(verbose)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := program.Parse(args[0])
		if err != nil {
			return err
		}
		return prog.Run(program.Params{
			PrintDepth:   printDepth,
			PrintBreadth: printBreadth,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().IntVarP(&printDepth, "depth", "d", 0, "limit pretty-print depth (0 = unlimited)")
	rootCmd.Flags().IntVarP(&printBreadth, "breadth", "b", 0, "limit pretty-print breadth per group (0 = unlimited)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
