package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeRecord prints one record as column/value lines in schema order.
func writeRecord(w io.Writer, r *types.Record) error {
	if flags.jsonMode {
		return writeJSON(w, r.Values())
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range r.Schema().ColumnNames() {
		v, _ := r.Get(c)
		fmt.Fprintf(tw, "%s\t%s\n", c, formatValue(v))
	}
	return tw.Flush()
}

// writeRecords prints records as a table with a header row.
func writeRecords(w io.Writer, s *types.Schema, records []*types.Record) error {
	if flags.jsonMode {
		rows := make([]map[string]any, 0, len(records))
		for _, r := range records {
			rows = append(rows, r.Values())
		}
		return writeJSON(w, rows)
	}
	cols := s.ColumnNames()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(cols, "\t")))
	for _, r := range records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			v, _ := r.Get(c)
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// writeSchema prints the columns of a schema.
func writeSchema(w io.Writer, s *types.Schema) error {
	if flags.jsonMode {
		return writeJSON(w, s)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tKEY")
	for _, c := range s.Columns {
		key := ""
		switch {
		case c.AutoIncrement:
			key = "primary, auto"
		case c.Primary:
			key = "primary"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Type, key)
	}
	return tw.Flush()
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}

// parseValue reads a command-line value as JSON, falling back to the raw
// string.
func parseValue(raw string) any {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return raw
	}
	return parsed
}

// parseAssignments parses column=value arguments.
func parseAssignments(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		col, raw, ok := strings.Cut(arg, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected column=value)", arg)
		}
		out[col] = parseValue(raw)
	}
	return out, nil
}
