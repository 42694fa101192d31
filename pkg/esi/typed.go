package esi

import (
	"context"
	"maps"

	"golang.org/x/sync/errgroup"
)

// Do performs a call and decodes the payload into T.
//
//	status, err := esi.Do[ServerStatus](ctx, agent, "get_status", nil, "")
func Do[T any](ctx context.Context, agent *Agent, routeID string, params *Params, token string) (T, error) {
	resp, err := agent.Request(ctx, routeID, params, token)
	if err != nil {
		var zero T

		return zero, err
	}

	return decodeAs[T](routeID, resp)
}

func decodeAs[T any](routeID string, resp *Response) (T, error) {
	var out T

	if len(resp.Body) == 0 {
		return out, nil
	}

	err := resp.Decode(&out)
	if err != nil {
		return out, &DecodeError{RouteID: routeID, Body: resp.Body, Err: err}
	}

	return out, nil
}

// DoAllPages fetches every page of a paginated route and concatenates the
// results. Page 1 is requested first to learn X-Pages; the rest are issued
// concurrently through the agent, so they share its cache and rate limits.
func DoAllPages[T any](ctx context.Context, agent *Agent, routeID string, params *Params, token string) ([]T, error) {
	resp, err := agent.Request(ctx, routeID, withPage(params, 1), token)
	if err != nil {
		return nil, err
	}

	first, err := decodeAs[[]T](routeID, resp)
	if err != nil {
		return nil, err
	}

	if resp.Pages <= 1 {
		return first, nil
	}

	pages := make([][]T, resp.Pages)
	pages[0] = first

	group, groupCtx := errgroup.WithContext(ctx)

	for page := 2; page <= resp.Pages; page++ {
		group.Go(func() error {
			items, err := Do[[]T](groupCtx, agent, routeID, withPage(params, page), token)
			if err != nil {
				return err
			}

			pages[page-1] = items

			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return nil, err //nolint:wrapcheck // errors already carry the route
	}

	var all []T
	for _, items := range pages {
		all = append(all, items...)
	}

	return all, nil
}

func withPage(params *Params, page int) *Params {
	paged := &Params{}
	if params != nil {
		paged.Path = params.Path
		paged.Body = params.Body
		paged.Query = maps.Clone(params.Query)
	}

	if paged.Query == nil {
		paged.Query = make(map[string]any, 1)
	}

	paged.Query["page"] = page

	return paged
}
