package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
)

// renderOutput writes data in the configured output format. rows fills the
// table used for the table format.
func renderOutput(w io.Writer, data interface{}, header []string, rows func(table *tablewriter.Table) error) error {
	output := viper.GetString("output")

	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		return encoder.Encode(data)
	case constants.FormatTable, "":
		cells := make([]any, len(header))
		for i, name := range header {
			cells[i] = name
		}

		table := tablewriter.NewWriter(w)
		table.Header(cells...)

		err := rows(table)
		if err != nil {
			return err
		}

		err = table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, output)
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func checkMark(value bool) string {
	if value {
		return constants.CheckMarkSymbol
	}

	return ""
}

func orNotAvailable(value *string) string {
	if value == nil || *value == "" {
		return constants.NotAvailable
	}

	return *value
}
