// pkg/clio_cli/wrap.go

package clio_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Wrap adapts a RuntimeContext-aware handler to cobra's RunE, adding panic
// recovery, lifecycle logging and a telemetry span.
func Wrap(fn func(rc *clio_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		rc := clio_io.NewContext(parent, cmd.CommandPath())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		clio_io.LogRuntimeExecutionContext(rc)

		err = fn(rc, cmd, args)
		if err != nil && !clio_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
