package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/esi-client/internal/constants"
)

// parseKeyValues turns repeated key=value flags into a parameter map.
// Integer values are sent as numbers so they key the cache the same way as
// library callers passing ints.
func parseKeyValues(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil //nolint:nilnil // no parameters is not an error
	}

	values := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, pair)
		}

		if number, err := strconv.ParseInt(value, 10, 64); err == nil {
			values[key] = number

			continue
		}

		values[key] = value
	}

	return values, nil
}

// parseBody decodes a JSON request body given on the command line.
func parseBody(raw string) (any, error) {
	if raw == "" {
		return nil, nil //nolint:nilnil // no body is not an error
	}

	var body any

	err := json.Unmarshal([]byte(raw), &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidBody, err)
	}

	return body, nil
}

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	output := viper.GetString("output")

	switch output {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return output, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutput, output)
	}
}

// writeStructured writes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	if format == constants.FormatYAML {
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(v) //nolint:wrapcheck // encoder errors are self-describing
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v) //nolint:wrapcheck // encoder errors are self-describing
}

// render writes v in the configured format, using table for table output.
func render(w io.Writer, v any, table func(io.Writer) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	if format == constants.FormatTable {
		return table(w)
	}

	return writeStructured(w, format, v)
}

// renderProperties writes a two column Property/Value table.
func renderProperties(w io.Writer, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, row := range rows {
		_ = table.Append(row)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderData writes a decoded ESI payload as a table: objects as
// property rows, arrays of objects with one column per field, arrays of
// scalars as a single column.
func renderData(w io.Writer, data any) error {
	switch typed := data.(type) {
	case map[string]any:
		keys := sortedKeys(typed)

		rows := make([][]string, 0, len(keys))
		for _, key := range keys {
			rows = append(rows, []string{key, formatCell(typed[key])})
		}

		return renderProperties(w, rows)

	case []any:
		return renderList(w, typed)

	case nil:
		return nil

	default:
		_, err := fmt.Fprintln(w, formatCell(typed))

		return err //nolint:wrapcheck // write errors are self-describing
	}
}

func renderList(w io.Writer, items []any) error {
	columns := map[string]struct{}{}
	objects := true

	for _, item := range items {
		object, ok := item.(map[string]any)
		if !ok {
			objects = false

			break
		}

		for key := range object {
			columns[key] = struct{}{}
		}
	}

	table := tablewriter.NewWriter(w)

	if !objects || len(columns) == 0 {
		table.Header("Value")

		for _, item := range items {
			_ = table.Append([]string{formatCell(item)})
		}
	} else {
		header := sortedKeys(columns)
		table.Header(header)

		for _, item := range items {
			object, _ := item.(map[string]any)

			row := make([]string, len(header))
			for i, column := range header {
				row[i] = formatCell(object[column])
			}

			_ = table.Append(row)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}

		return string(data)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// maskSecret keeps a short prefix of a secret for recognition.
func maskSecret(secret string) string {
	const visible = 8

	switch {
	case secret == "":
		return constants.NotAvailable
	case len(secret) <= visible:
		return constants.MaskedSecret
	default:
		return secret[:visible] + constants.MaskedSecret
	}
}
