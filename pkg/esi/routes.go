package esi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Route describes one ESI operation.
type Route struct {
	// ID is the ESI operation id, e.g. "get_alliances_alliance_id".
	ID string `json:"id" yaml:"id"`
	// Method is the HTTP method.
	Method string `json:"method" yaml:"method"`
	// Path is relative to the base URL and may contain {placeholder} tokens.
	Path string `json:"path" yaml:"path"`
	// Scope is the SSO scope the operation requires, empty for public routes.
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Placeholders returns the names of the path's {placeholder} tokens in order.
func (r Route) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(r.Path, -1)

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match[1])
	}

	return names
}

// Authenticated reports whether the route needs a bearer token.
func (r Route) Authenticated() bool {
	return r.Scope != ""
}

// expandPath substitutes placeholders with path-escaped values from params.
func (r Route) expandPath(params map[string]any) (string, error) {
	var missing []string

	expanded := placeholderPattern.ReplaceAllStringFunc(r.Path, func(token string) string {
		name := token[1 : len(token)-1]

		value, ok := params[name]
		if !ok || value == nil {
			missing = append(missing, name)

			return token
		}

		return url.PathEscape(formatValue(value))
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s requires %s", ErrMissingPathParameter, r.ID, strings.Join(missing, ", "))
	}

	return expanded, nil
}

func (r Route) validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidRoute)
	case !strings.HasPrefix(r.Path, "/"):
		return fmt.Errorf("%w: %s: path %q must start with /", ErrInvalidRoute, r.ID, r.Path)
	}

	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodHead, http.MethodPatch:
		return nil
	default:
		return fmt.Errorf("%w: %s: method %q", ErrInvalidRoute, r.ID, r.Method)
	}
}

// Routes maps route ids to descriptors.
type Routes map[string]Route

// NewRoutes validates routes and indexes them by id.
func NewRoutes(routes ...Route) (Routes, error) {
	table := make(Routes, len(routes))

	for _, route := range routes {
		route.Method = strings.ToUpper(route.Method)

		err := route.validate()
		if err != nil {
			return nil, err
		}

		if _, exists := table[route.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, route.ID)
		}

		table[route.ID] = route
	}

	return table, nil
}

// DefaultRoutes returns a copy of the built-in route table.
func DefaultRoutes() Routes {
	table := make(Routes, len(defaultRoutes))
	for _, route := range defaultRoutes {
		table[route.ID] = route
	}

	return table
}

// LoadRoutes reads a YAML list of routes, for example:
//
//	# routes.yml
//	- id: get_status
//	  method: GET
//	  path: /status/
func LoadRoutes(r io.Reader) (Routes, error) {
	var routes []Route

	err := yaml.NewDecoder(r).Decode(&routes)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding routes: %w", err)
	}

	return NewRoutes(routes...)
}

// Lookup returns the route for id.
func (t Routes) Lookup(id string) (Route, bool) {
	route, ok := t[id]

	return route, ok
}

// IDs returns the sorted route ids.
func (t Routes) IDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Merge returns a new table with other's routes added, overriding on conflict.
func (t Routes) Merge(other Routes) Routes {
	merged := make(Routes, len(t)+len(other))
	for id, route := range t {
		merged[id] = route
	}

	for id, route := range other {
		merged[id] = route
	}

	return merged
}

// Filter returns the routes whose id or path contains substr, sorted by id.
func (t Routes) Filter(substr string) []Route {
	var out []Route

	for _, id := range t.IDs() {
		route := t[id]
		if substr == "" || strings.Contains(route.ID, substr) || strings.Contains(route.Path, substr) {
			out = append(out, route)
		}
	}

	return out
}
