// Command cooperationsim runs and inspects seeded multi-agent cooperation
// simulations.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	flagDBPath      string
	flagScenarioDir string
	flagLogLevel    string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cooperationsim",
		Short: "Run and inspect seeded multi-agent cooperation simulations",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(flagLogLevel)
		},
	}

	root.PersistentFlags().StringVar(&flagDBPath, "db", "data/cooperationsim.db", "path to the SQLite run database")
	root.PersistentFlags().StringVar(&flagScenarioDir, "scenario-dir", "scenarios", "directory of TOML scenario documents")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newReplayCmd())

	return root
}

func configureLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
