package esi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Params carries the per-call inputs of a route.
type Params struct {
	// Path fills the route's {placeholder} tokens.
	Path map[string]any `json:"path,omitempty"`
	// Query is added to the query string. Slices are sent comma separated.
	Query map[string]any `json:"query,omitempty"`
	// Body is sent as JSON for methods other than GET and HEAD.
	Body any `json:"body,omitempty"`
}

// RequestKey derives the cache and coalescing key for a call. Parameters are
// serialized canonically (object keys sorted at every depth), so maps built in
// a different order produce the same key. The result only contains characters
// valid in NATS KV and LevelDB keys.
func RequestKey(routeID string, params *Params, token string) (string, error) {
	canonical, err := canonicalJSON(params)
	if err != nil {
		return "", err
	}

	hash := sha256.New()
	hash.Write(canonical)
	hash.Write([]byte{0})
	hash.Write([]byte(token))

	return routeID + "." + hex.EncodeToString(hash.Sum(nil)), nil
}

// canonicalJSON round-trips v through generic JSON values. encoding/json
// writes map keys sorted, and json.Number keeps numeric literals intact.
func canonicalJSON(v any) ([]byte, error) {
	if params, ok := v.(*Params); ok && params == nil {
		return []byte("{}"), nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var generic any

	err = decoder.Decode(&generic)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	return canonical, nil
}

// formatValue renders a path or query value the way ESI expects: scalars as
// plain text, slices as comma separated lists.
func formatValue(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case fmt.Stringer:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range rv.Len() {
			parts[i] = formatValue(rv.Index(i).Interface())
		}

		return strings.Join(parts, ",")
	}

	return fmt.Sprint(value)
}
