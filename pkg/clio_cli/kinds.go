// pkg/clio_cli/kinds.go

package clio_cli

import (
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_err"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/clio_io"
	"github.com/CodeMonkeyCybersecurity/clio/pkg/logpaths"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// KindGroup turns group into a parent with one child per entity kind, built
// by newKind. Run without a kind it prints help; an unknown kind is a
// validation error.
func KindGroup(group *cobra.Command, newKind func(kind logpaths.Kind) *cobra.Command) *cobra.Command {
	group.RunE = Wrap(func(rc *clio_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return clio_err.NewValidationError(
				fmt.Sprintf("unknown entity kind %q", args[0]),
				"Use one of: "+kindNames())
		}
		otelzap.Ctx(rc.Ctx).Info("No entity kind provided", zap.String("command", cmd.Use))
		return cmd.Help()
	})
	for _, kind := range logpaths.Kinds() {
		group.AddCommand(newKind(kind))
	}
	return group
}

func kindNames() string {
	kinds := logpaths.Kinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}
