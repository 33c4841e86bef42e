package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	pkgstrings "combell-mcp/pkg/strings"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	// OutputFormatTable renders listings as tables and objects as key/value pairs.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON prints the tool result as returned.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML converts the JSON result to YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidateOutputFormat returns an error for unsupported format names.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, json, yaml)", format)
	}
}

// leadingColumns are shown first when present, in this order.
var leadingColumns = []string{
	"id", "identifier", "name", "domain_name", "domainName", "common_name", "commonName",
	"type", "record_name", "content", "status", "expiration_date", "expirationDate",
	"days_until_expiry", "is_healthy",
}

// Renderer writes tool results in one OutputFormat.
type Renderer struct {
	Format    OutputFormat
	Out       io.Writer
	NoHeaders bool
}

// Render prints a JSON tool result. Text that is not JSON is printed as is.
func (r *Renderer) Render(payload string) error {
	switch r.Format {
	case OutputFormatJSON:
		_, err := fmt.Fprintln(r.Out, payload)
		return err
	case OutputFormatYAML, OutputFormatTable, "":
	default:
		return fmt.Errorf("unsupported output format: %s", r.Format)
	}

	var data any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		_, err := fmt.Fprintln(r.Out, payload)
		return err
	}

	if r.Format == OutputFormatYAML {
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		_, err = r.Out.Write(out)
		return err
	}
	r.renderValue("", data)
	return nil
}

func (r *Renderer) renderValue(title string, data any) {
	switch d := data.(type) {
	case map[string]any:
		r.renderObject(title, d)
	case []any:
		r.renderList(title, d)
	default:
		fmt.Fprintln(r.Out, cell(d))
	}
}

// renderObject prints lists of objects as their own tables and everything
// else as one key/value table.
func (r *Renderer) renderObject(title string, obj map[string]any) {
	var scalarKeys, listKeys []string
	for k, v := range obj {
		if list, ok := v.([]any); ok && (len(list) == 0 || isObjectList(list)) {
			listKeys = append(listKeys, k)
			continue
		}
		scalarKeys = append(scalarKeys, k)
	}
	sort.Strings(listKeys)
	scalarKeys = orderColumns(scalarKeys)

	for _, k := range listKeys {
		r.renderList(k, obj[k].([]any))
	}

	if len(scalarKeys) == 0 {
		return
	}
	t := r.newTable(title)
	if !r.NoHeaders {
		t.AppendHeader(table.Row{"KEY", "VALUE"})
	}
	for _, k := range scalarKeys {
		v := obj[k]
		// Nested summaries read better expanded.
		if nested, ok := v.(map[string]any); ok {
			for _, nk := range orderColumns(keys(nested)) {
				t.AppendRow(table.Row{k + "." + nk, cell(nested[nk])})
			}
			continue
		}
		t.AppendRow(table.Row{k, cell(v)})
	}
	t.Render()
}

func (r *Renderer) renderList(title string, list []any) {
	if len(list) == 0 {
		fmt.Fprintln(r.Out, text.FgYellow.Sprintf("No %s found", strings.ReplaceAll(orDefault(title, "results"), "_", " ")))
		return
	}
	if !isObjectList(list) {
		t := r.newTable(title)
		for _, item := range list {
			t.AppendRow(table.Row{cell(item)})
		}
		t.Render()
		return
	}

	columns := columnsOf(list)
	t := r.newTable(title)
	if !r.NoHeaders {
		header := make(table.Row, len(columns))
		for i, c := range columns {
			header[i] = strings.ToUpper(c)
		}
		t.AppendHeader(header)
	}
	for _, item := range list {
		obj := item.(map[string]any)
		row := make(table.Row, len(columns))
		for i, c := range columns {
			row[i] = cell(obj[c])
		}
		t.AppendRow(row)
	}
	t.Render()
}

func (r *Renderer) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.Out)
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle(strings.ReplaceAll(title, "_", " "))
	}
	return t
}

func isObjectList(list []any) bool {
	if len(list) == 0 {
		return false
	}
	for _, item := range list {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

// columnsOf returns the union of the keys of every item.
func columnsOf(list []any) []string {
	seen := map[string]bool{}
	for _, item := range list {
		for k := range item.(map[string]any) {
			seen[k] = true
		}
	}
	return orderColumns(keys(seen))
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func orderColumns(cols []string) []string {
	sort.Strings(cols)
	out := make([]string, 0, len(cols))
	for _, lc := range leadingColumns {
		if slices.Contains(cols, lc) {
			out = append(out, lc)
		}
	}
	for _, c := range cols {
		if !slices.Contains(leadingColumns, c) {
			out = append(out, c)
		}
	}
	return out
}

// cell renders one value for a table cell.
func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return pkgstrings.Truncate(pkgstrings.OrDash(val), pkgstrings.DefaultCellMaxLen)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			switch item.(type) {
			case map[string]any, []any:
				return fmt.Sprintf("%d items", len(val))
			}
			parts = append(parts, cell(item))
		}
		if len(parts) == 0 {
			return "-"
		}
		return pkgstrings.Truncate(strings.Join(parts, ", "), pkgstrings.DefaultCellMaxLen)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return pkgstrings.Truncate(string(encoded), pkgstrings.DefaultCellMaxLen)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
