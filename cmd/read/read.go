// cmd/read/read.go

package read

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_cli"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_io"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logreader"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/safelog"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// NewCmd returns the read command with one subcommand per entity kind.
func NewCmd() *cobra.Command {
	return clio_cli.KindGroup(&cobra.Command{
		Use:   "read",
		Short: "Print or follow the log of a job, experiment or experiment-job",
		Long: `Read prints the log of an entity. With --follow it keeps printing lines as
they are appended until interrupted.

Examples:
  clio read job alice.mnist.jobs.42 --tail 20
  clio read experiment alice.mnist --temp --follow`,
	}, newKindCmd)
}

func newKindCmd(kind logpaths.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.String() + " NAME",
		Short: fmt.Sprintf("Print the log of a %s", kind),
		Args:  cobra.ExactArgs(1),
		RunE: clio_cli.Wrap(func(rc *clio_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			name := args[0]
			temp := clio_cli.GetBoolOrFalse(cmd, "temp")

			path, err := safelog.Default().Layout().Resolve(kind, name, temp)
			if err != nil {
				return err
			}
			otelzap.Ctx(rc.Ctx).Debug("Reading log", zap.String("path", path))

			if clio_cli.GetBoolOrFalse(cmd, "follow") {
				ctx, stop := signal.NotifyContext(rc.Ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				return logreader.Follow(ctx, path, cmd.OutOrStdout())
			}

			data, err := logreader.Tail(path, clio_cli.GetIntOrZero(cmd, "tail"))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}),
	}
	clio_cli.AddBoolFlag(cmd, "temp", "t", false, "Read the temp log instead of the permanent one")
	clio_cli.AddBoolFlag(cmd, "follow", "f", false, "Keep printing appended lines until interrupted")
	clio_cli.AddIntFlag(cmd, "tail", "n", 0, "Print only the last N lines (0 prints everything)")
	return cmd
}
