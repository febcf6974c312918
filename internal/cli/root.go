package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dshills/panelgap/internal/logging"
)

const version = "0.1.0"

// Exit codes
const (
	ExitSuccess      = 0
	ExitGaps         = 1
	ExitUsageError   = 2
	ExitStoreError   = 3
	ExitRuntimeError = 4
)

var (
	flagDebug bool
	flagSet   []string
)

var rootCmd = &cobra.Command{
	Use:   "panelgap",
	Short: "Find panel review issues the static analyzer missed",
	Long: "panelgap extracts verdicts from expert-panel review transcripts, maps them to " +
		"analyzer rule codes, and reports the issues no analyzer finding covers.",
	SilenceUsage: true,
}

// logger is replaced by loadConfig once the log level is known.
var logger = logging.Nop()

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(mappingCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer func() { _ = logger.Sync() }()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// fail reports err on stderr and records the exit code.
func fail(code int, err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitCode = code
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print panelgap version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "panelgap version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringArrayVar(&flagSet, "set", nil, "Override a config key (key=value, repeatable)")
}
