// cmd/create/create.go

package create

import (
	"fmt"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_cli"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_io"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/safelog"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// NewCmd returns the create command with one subcommand per entity kind.
func NewCmd() *cobra.Command {
	return clio_cli.KindGroup(&cobra.Command{
		Use:   "create",
		Short: "Create the log directories of an entity",
		Long: `Create makes the parent directories of both the permanent and the temp log
of an entity. It is safe to run repeatedly and never creates or touches the
log files themselves.`,
	}, newKindCmd)
}

func newKindCmd(kind logpaths.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   kind.String() + " NAME",
		Short: fmt.Sprintf("Create the log directories of a %s", kind),
		Args:  cobra.ExactArgs(1),
		RunE: clio_cli.Wrap(func(rc *clio_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			name := args[0]
			layout := safelog.Default().Layout()

			if err := layout.Create(kind, name); err != nil {
				otelzap.Ctx(rc.Ctx).Error("Failed to create log path",
					zap.String("kind", kind.String()),
					zap.String("name", name),
					zap.Error(err))
				return err
			}

			for _, temp := range []bool{false, true} {
				path, err := layout.Resolve(kind, name, temp)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), path); err != nil {
					return err
				}
			}
			otelzap.Ctx(rc.Ctx).Info("Log path ready",
				zap.String("kind", kind.String()),
				zap.String("name", name))
			return nil
		}),
	}
}
