// cmd/list/list.go

package list

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_cli"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_io"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logreader"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/output"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/safelog"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

// NewCmd returns the list command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entity logs under the log root",
		Long: `List walks the permanent (or, with --temp, the temp) log root and prints
every entity log found with its kind, name, size and modification time.`,
		Args: cobra.NoArgs,
		RunE: clio_cli.Wrap(func(rc *clio_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			temp := clio_cli.GetBoolOrFalse(cmd, "temp")
			format := clio_cli.GetStringOrEmpty(cmd, "format")
			if format != formatText && format != formatYAML {
				return clio_err.NewValidationError(
					fmt.Sprintf("unknown output format %q", format),
					"Use --format text or --format yaml")
			}

			root := safelog.Default().Layout().Root(temp)
			entries, err := logreader.List(root)
			if err != nil {
				return err
			}
			if k := clio_cli.GetStringOrEmpty(cmd, "kind"); k != "" {
				kind, err := logpaths.ParseKind(k)
				if err != nil {
					return err
				}
				entries = filterKind(entries, kind)
			}
			otelzap.Ctx(rc.Ctx).Debug("Listed logs",
				zap.String("root", root),
				zap.Int("count", len(entries)))

			if format == formatYAML {
				out, err := logreader.MarshalYAML(entries)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return printTable(cmd.OutOrStdout(), entries)
		}),
	}
	clio_cli.AddBoolFlag(cmd, "temp", "t", false, "List the temp log root instead of the permanent one")
	clio_cli.AddStringFlag(cmd, "format", "o", formatText, "Output format: text or yaml", false)
	clio_cli.AddStringFlag(cmd, "kind", "k", "", "Only list logs of this kind: job, experiment or experiment-job", false)
	return cmd
}

func filterKind(entries []logreader.Entry, kind logpaths.Kind) []logreader.Entry {
	var out []logreader.Entry
	for _, e := range entries {
		if e.Kind == kind.String() {
			out = append(out, e)
		}
	}
	return out
}

func printTable(w io.Writer, entries []logreader.Entry) error {
	table := output.NewTable(w).WithHeaders("KIND", "NAME", "SIZE", "MODIFIED")
	for _, e := range entries {
		table.AddRow(e.Kind, e.Name, strconv.FormatInt(e.Size, 10), e.ModTime.Format(time.RFC3339))
	}
	return table.Render()
}
