package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/esi-client/pkg/esi"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		pathParams  []string
		queryParams []string
		body        string
		allPages    bool
		forceAuth   bool
	)

	cmd := &cobra.Command{
		Use:   "get ROUTE_ID",
		Short: "Call an ESI route",
		Long: `Call any ESI route by its id and print the response.

Examples:
  esi get get_status
  esi get get_alliances_alliance_id --path alliance_id=99000006
  esi get get_markets_region_id_orders --path region_id=10000002 --query order_type=sell --all-pages
  esi get post_universe_names --body '[95465499, 30000142]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := buildParams(pathParams, queryParams, body)
			if err != nil {
				return err
			}

			config := loadConfig()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			sess, err := newSession(ctx, config)
			if err != nil {
				return err
			}
			defer sess.Close(ctx)

			routeID := args[0]

			route, ok := sess.agent.Routes().Lookup(routeID)
			if !ok {
				return &esi.UnknownRouteError{RouteID: routeID}
			}

			token := ""
			if route.Authenticated() || forceAuth {
				token, err = newTokenManager(cmd, config).GetToken(ctx)
				if err != nil {
					return fmt.Errorf("route %s requires a token: %w", routeID, err)
				}
			}

			data, err := fetchData(ctx, sess.agent, routeID, params, token, allPages)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), data, func(w io.Writer) error {
				return renderData(w, data)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&pathParams, "path", "p", nil, "path parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&queryParams, "query", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&body, "body", "b", "", "JSON request body")
	cmd.Flags().BoolVar(&allPages, "all-pages", false, "fetch every page of a paginated route")
	cmd.Flags().BoolVar(&forceAuth, "auth", false, "send the token even if the route has no scope")

	return cmd
}

func buildParams(pathParams, queryParams []string, rawBody string) (*esi.Params, error) {
	path, err := parseKeyValues(pathParams)
	if err != nil {
		return nil, err
	}

	query, err := parseKeyValues(queryParams)
	if err != nil {
		return nil, err
	}

	body, err := parseBody(rawBody)
	if err != nil {
		return nil, err
	}

	if path == nil && query == nil && body == nil {
		return nil, nil //nolint:nilnil // nil params are valid
	}

	return &esi.Params{Path: path, Query: query, Body: body}, nil
}

func fetchData(ctx context.Context, agent *esi.Agent, routeID string, params *esi.Params, token string, allPages bool) (any, error) {
	if allPages {
		items, err := esi.DoAllPages[json.RawMessage](ctx, agent, routeID, params, token)
		if err != nil {
			return nil, err //nolint:wrapcheck // esi errors carry the route
		}

		data := make([]any, 0, len(items))

		for _, item := range items {
			var value any
			if err := json.Unmarshal(item, &value); err != nil {
				return nil, fmt.Errorf("decoding %s item: %w", routeID, err)
			}

			data = append(data, value)
		}

		return data, nil
	}

	resp, err := agent.Request(ctx, routeID, params, token)
	if err != nil {
		return nil, err //nolint:wrapcheck // esi errors carry the route
	}

	return resp.Data, nil
}
