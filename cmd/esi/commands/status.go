package commands

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/esi-client/pkg/esi"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show EVE server status",
		Long:  "Display the player count and version of the configured EVE server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			sess, err := newSession(ctx, loadConfig())
			if err != nil {
				return err
			}
			defer sess.Close(ctx)

			status, err := esi.Do[esi.ServerStatus](ctx, sess.agent, "get_status", nil, "")
			if err != nil {
				return err //nolint:wrapcheck // esi errors carry the route
			}

			return render(cmd.OutOrStdout(), status, func(w io.Writer) error {
				return renderProperties(w, [][]string{
					{"Players", strconv.Itoa(status.Players)},
					{"Server Version", status.ServerVersion},
					{"Start Time", status.StartTime.Format(time.RFC3339)},
					{"Uptime", time.Since(status.StartTime).Truncate(time.Minute).String()},
					{"VIP", strconv.FormatBool(status.VIP)},
				})
			})
		},
	}
}
