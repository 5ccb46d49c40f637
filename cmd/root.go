/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/clio/cmd/appendlog"
	"github.com/CodeMonkeyCybersecurity/clio/cmd/create"
	"github.com/CodeMonkeyCybersecurity/clio/cmd/list"
	"github.com/CodeMonkeyCybersecurity/clio/cmd/read"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/config"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/safelog"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCmd builds the clio command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   shared.ClioID,
		Short: "Append, read and list job and experiment logs on a shared filesystem",
		Long: `clio appends lines to per-entity log files under a shared log root.

Every append holds an exclusive advisory lock on the log for the duration of
its single write, so cooperating writers never interleave partial lines.
Missing log directories are created on the first write.`,
		Version:           shared.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	pf := root.PersistentFlags()
	pf.String("logs-root", shared.DefaultLogsRoot, "Root directory of permanent entity logs")
	pf.String("temp-logs-root", shared.DefaultTempLogsRoot, "Root directory of temp entity logs")
	pf.String("config", "", "Config file (default: clio.yaml in ., $XDG_CONFIG_HOME/clio, /etc/clio)")
	pf.String("log-level", "INFO", "Console log level: DEBUG, INFO, WARN, ERROR")
	pf.String("log-file", "", "File for clio's own JSON log (default: first writable platform path)")
	pf.Bool("debug", false, "Enable debug logging and verbose errors")

	root.AddCommand(
		appendlog.NewCmd(),
		create.NewCmd(),
		read.NewCmd(),
		list.NewCmd(),
	)
	return root
}

// setup resolves configuration and installs the process-wide logger,
// telemetry provider and default appender before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	v := config.New()
	if err := config.BindFlagsToViper(cmd.Root(), v); err != nil {
		return cerr.Wrap(err, "failed to bind flags")
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg, err := config.Load(v, wd)
	if err != nil {
		return err
	}

	debug := v.GetBool("debug")
	clio_err.SetDebugMode(debug)
	level := cfg.LogLevel
	if debug {
		level = "DEBUG"
	}
	logger.InitializeWithFallback(level, cfg.LogFile)

	if err := telemetry.Init(shared.ClioID, cfg.Telemetry, cfg.TelemetryDir); err != nil {
		logger.L().Warn("Telemetry disabled", zap.Error(err))
	}

	safelog.SetDefault(safelog.New(logpaths.NewLayout(cfg.LogsRoot, cfg.TempLogsRoot)))

	logger.L().Debug("Configuration resolved",
		zap.String("logs_root", cfg.LogsRoot),
		zap.String("temp_logs_root", cfg.TempLogsRoot),
		zap.Bool("telemetry", cfg.Telemetry))
	return nil
}

// Run executes the command tree with args and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := telemetry.Shutdown(shutdownCtx); serr != nil {
		logger.L().Warn("Failed to flush telemetry", zap.Error(serr))
	}

	if err != nil {
		clio_err.PrintError("clio", err)
	}
	return clio_err.GetExitCode(err)
}

// Execute runs clio with the process arguments and exits.
func Execute() {
	code := Run(context.Background(), os.Args[1:])
	if err := logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
	}
	os.Exit(code)
}
