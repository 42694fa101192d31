package commands

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/esi-client/internal/constants"
	"github.com/fivetwenty-io/esi-client/pkg/esi"
)

// NewRoutesCommand creates the routes command.
func NewRoutesCommand() *cobra.Command {
	var (
		authOnly bool
		public   bool
	)

	cmd := &cobra.Command{
		Use:   "routes [FILTER]",
		Short: "List known ESI routes",
		Long:  "List the route ids the CLI can call, optionally filtered by id or path substring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			routes := esi.DefaultRoutes()

			if config.RoutesFile != "" {
				loaded, err := loadRoutesFile(config.RoutesFile)
				if err != nil {
					return err
				}

				routes = loaded
			}

			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}

			matched := make([]esi.Route, 0, len(routes))

			for _, route := range routes.Filter(filter) {
				if (authOnly && !route.Authenticated()) || (public && route.Authenticated()) {
					continue
				}

				matched = append(matched, route)
			}

			return render(cmd.OutOrStdout(), matched, func(w io.Writer) error {
				return renderRoutes(w, matched)
			})
		},
	}

	cmd.Flags().BoolVar(&authOnly, "authenticated", false, "only routes that need an SSO scope")
	cmd.Flags().BoolVar(&public, "public", false, "only routes without an SSO scope")
	cmd.MarkFlagsMutuallyExclusive("authenticated", "public")

	return cmd
}

func renderRoutes(w io.Writer, routes []esi.Route) error {
	table := tablewriter.NewWriter(w)
	table.Header("Route ID", "Method", "Path", "Scope")

	for _, route := range routes {
		scope := route.Scope
		if scope == "" {
			scope = constants.NotAvailable
		}

		_ = table.Append([]string{route.ID, route.Method, route.Path, scope})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, _ = fmt.Fprintf(w, "\n%d routes\n", len(routes))

	return nil
}
