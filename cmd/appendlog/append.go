// cmd/appendlog/append.go

package appendlog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_cli"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_io"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/safelog"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// NewCmd returns the append command with one subcommand per entity kind.
func NewCmd() *cobra.Command {
	return clio_cli.KindGroup(&cobra.Command{
		Use:   "append",
		Short: "Append lines to a job, experiment or experiment-job log",
		Long: `Append writes the given text, followed by a single newline, to the log of an
entity. The text comes from --line or, when --line is not given, from stdin
with one trailing newline removed.

Examples:
  clio append job alice.mnist.jobs.42 --line "epoch 3 loss=0.12"
  make train 2>&1 | clio append experiment alice.mnist --temp`,
	}, newKindCmd)
}

func newKindCmd(kind logpaths.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.String() + " NAME",
		Short: fmt.Sprintf("Append lines to a %s log", kind),
		Args:  cobra.ExactArgs(1),
		RunE: clio_cli.Wrap(func(rc *clio_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			name := args[0]
			temp := clio_cli.GetBoolOrFalse(cmd, "temp")

			lines, err := linesFrom(cmd)
			if err != nil {
				return err
			}

			target := safelog.Target{Name: name, Temp: temp}
			if err := safelog.Default().AppendKind(rc.Ctx, kind, target, lines); err != nil {
				return err
			}

			otelzap.Ctx(rc.Ctx).Info("Appended to log",
				zap.String("kind", kind.String()),
				zap.String("name", name),
				zap.Bool("temp", temp))
			return nil
		}),
	}
	clio_cli.AddStringFlag(cmd, "line", "l", "", "Text to append (default: read stdin)", false)
	clio_cli.AddBoolFlag(cmd, "temp", "t", false, "Append to the temp log instead of the permanent one")
	return cmd
}

// linesFrom returns --line when set, otherwise all of stdin minus one
// trailing line ending, since the appender adds its own newline. An
// interactive stdin is refused rather than waited on.
func linesFrom(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("line") {
		return clio_cli.GetStringOrEmpty(cmd, "line"), nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", clio_err.NewValidationError("nothing to append: no --line given and stdin is a terminal",
			"Pass --line TEXT or pipe the text into clio append")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", cerr.Wrap(err, "failed to read stdin")
	}
	s := string(data)
	if strings.HasSuffix(s, "\r\n") {
		return strings.TrimSuffix(s, "\r\n"), nil
	}
	return strings.TrimSuffix(s, "\n"), nil
}
