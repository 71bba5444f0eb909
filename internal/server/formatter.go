package server

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mklzl/rollsync/internal/engine"
)

// OutputFormat specifies the result format.
type OutputFormat string

const (
	FormatTabSeparated OutputFormat = "TabSeparated"
	FormatJSON         OutputFormat = "JSON"
	FormatCSV          OutputFormat = "CSV"
)

// ParseFormat parses a format string (case-insensitive).
func ParseFormat(s string) OutputFormat {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "csv":
		return FormatCSV
	default:
		return FormatTabSeparated
	}
}

// FormatResult writes a tabular result in the specified format.
func FormatResult(w io.Writer, res *engine.Result, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return formatJSON(w, res)
	case FormatCSV:
		return formatCSV(w, res)
	default:
		return formatTabSeparated(w, res)
	}
}

func formatTabSeparated(w io.Writer, res *engine.Result) error {
	fmt.Fprintln(w, strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return nil
}

func formatCSV(w io.Writer, res *engine.Result) error {
	fmt.Fprintln(w, strings.Join(quoteCSV(res.Columns), ","))
	for _, row := range res.Rows {
		fmt.Fprintln(w, strings.Join(quoteCSV(row), ","))
	}
	return nil
}

func formatJSON(w io.Writer, res *engine.Result) error {
	type resultJSON struct {
		Meta []map[string]string `json:"meta"`
		Data []map[string]string `json:"data"`
		Rows int                 `json:"rows"`
	}

	result := resultJSON{Rows: len(res.Rows)}
	for _, name := range res.Columns {
		result.Meta = append(result.Meta, map[string]string{"name": name})
	}
	for _, row := range res.Rows {
		rowMap := make(map[string]string, len(res.Columns))
		for i, name := range res.Columns {
			if i < len(row) {
				rowMap[name] = row[i]
			}
		}
		result.Data = append(result.Data, rowMap)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func quoteCSV(vals []string) []string {
	result := make([]string, len(vals))
	for i, v := range vals {
		if strings.ContainsAny(v, ",\"\n") {
			result[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		} else {
			result[i] = v
		}
	}
	return result
}
