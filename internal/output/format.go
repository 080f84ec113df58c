package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/itchyny/gojq"
	"github.com/nao1215/markdown"
	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is human-readable output (default).
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable is tabular format for lists.
	FormatTable Format = "table"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
	// FormatMarkdown renders lists as a Markdown table.
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON:
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", errors.New("invalid --output format (expected text|json|ndjson|table|yaml|markdown)")
	}
}

// IsStructured reports whether the format is machine-readable structured output.
func IsStructured(format Format) bool {
	switch format {
	case FormatJSON, FormatNDJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// TextWriter is implemented by values with their own text rendering.
type TextWriter interface {
	WriteText(w io.Writer) error
}

// Tabular is implemented by values that know their table layout.
type Tabular interface {
	Table() Table
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
	}
}

// Print outputs data in the configured format. A jq query from the context
// filters structured formats.
func (p *Printer) Print(ctx context.Context, data any) error {
	if data == nil {
		return nil
	}

	switch p.format {
	case FormatJSON:
		return p.printJSON(ctx, data, "  ")
	case FormatNDJSON:
		return p.printNDJSON(ctx, data)
	case FormatYAML:
		return p.printYAML(ctx, data)
	case FormatTable:
		return p.printTable(data)
	case FormatMarkdown:
		return p.printMarkdown(data)
	case FormatText:
		return p.printText(data)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// runQuery evaluates the context's jq query against data. ok is false when
// no query is set.
func runQuery(ctx context.Context, data any) (results []any, ok bool, err error) {
	query := QueryFromContext(ctx)
	if query == "" {
		return nil, false, nil
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, true, fmt.Errorf("invalid --query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, true, fmt.Errorf("invalid --query: %w", err)
	}

	input, err := toJSONValue(data)
	if err != nil {
		return nil, true, err
	}

	iter := code.RunWithContext(ctx, input)
	for {
		v, more := iter.Next()
		if !more {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, true, fmt.Errorf("query error: %w", err)
		}
		results = append(results, v)
	}
	return results, true, nil
}

// toJSONValue converts data into the map/slice shapes gojq accepts.
func toJSONValue(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding query input: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding query input: %w", err)
	}
	return v, nil
}

func (p *Printer) printJSON(ctx context.Context, data any, indent string) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	results, queried, err := runQuery(ctx, data)
	if err != nil {
		return err
	}
	if !queried {
		enc.SetIndent("", indent)
		return enc.Encode(data)
	}
	for _, v := range results {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printNDJSON(ctx context.Context, data any) error {
	if QueryFromContext(ctx) != "" {
		return p.printJSON(ctx, data, "")
	}

	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		for i := 0; i < v.Len(); i++ {
			if err := enc.Encode(v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}

	return enc.Encode(data)
}

func (p *Printer) printYAML(ctx context.Context, data any) error {
	results, queried, err := runQuery(ctx, data)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	if !queried {
		return enc.Encode(data)
	}
	for _, v := range results {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// printText outputs data as human-readable text.
// For maps and structs: key-value pairs.
// For slices: one item per line.
func (p *Printer) printText(data any) error {
	if tw, ok := data.(TextWriter); ok {
		return tw.WriteText(p.w)
	}

	v := reflect.ValueOf(data)
	if !v.IsValid() {
		return nil
	}
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		return p.printTextMap(v)
	case reflect.Struct:
		return p.printTextStruct(v)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if _, err := fmt.Fprintln(p.w, v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(p.w, v.Interface())
		return err
	}
}

func (p *Printer) printTextMap(v reflect.Value) error {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})

	for _, key := range keys {
		if _, err := fmt.Fprintf(p.w, "%v: %v\n", key.Interface(), v.MapIndex(key).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTextStruct(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		value := v.Field(i)
		tag := field.Tag.Get("json")
		if strings.Contains(tag, "omitempty") && value.IsZero() {
			continue
		}
		if _, err := fmt.Fprintf(p.w, "%s: %v\n", fieldLabel(field), value.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTable(data any) error {
	table, err := tableOf(data)
	if err != nil {
		return err
	}
	if len(table.Headers) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(table.Headers, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func (p *Printer) printMarkdown(data any) error {
	table, err := tableOf(data)
	if err != nil {
		return err
	}
	if len(table.Headers) == 0 {
		return nil
	}

	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = strings.ReplaceAll(cell, "|", `\|`)
		}
	}

	md := markdown.NewMarkdown(p.w)
	md.Table(markdown.TableSet{Header: table.Headers, Rows: rows})
	return md.Build()
}

func tableOf(data any) (Table, error) {
	switch t := data.(type) {
	case Table:
		return t, nil
	case Tabular:
		return t.Table(), nil
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return Table{}, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return Table{}, nil
		}
		return buildTable(v), nil
	case reflect.Map:
		table := Table{Headers: []string{"key", "value"}}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			table.Rows = append(table.Rows, []string{fmt.Sprint(k.Interface()), fmt.Sprint(v.MapIndex(k).Interface())})
		}
		return table, nil
	default:
		return Table{}, fmt.Errorf("table format requires a list of items")
	}
}

func buildTable(v reflect.Value) Table {
	first := indirect(v.Index(0))

	if first.Kind() != reflect.Struct {
		table := Table{Headers: []string{"value"}}
		for i := 0; i < v.Len(); i++ {
			table.Rows = append(table.Rows, []string{fmt.Sprint(v.Index(i).Interface())})
		}
		return table
	}

	var idx []int
	var table Table
	for i := 0; i < first.NumField(); i++ {
		f := first.Type().Field(i)
		if !f.IsExported() {
			continue
		}
		idx = append(idx, i)
		table.Headers = append(table.Headers, fieldLabel(f))
	}

	for i := 0; i < v.Len(); i++ {
		item := indirect(v.Index(i))
		if item.Kind() != reflect.Struct {
			table.Rows = append(table.Rows, []string{fmt.Sprint(item.Interface())})
			continue
		}
		row := make([]string, 0, len(idx))
		for _, j := range idx {
			row = append(row, fmt.Sprint(item.Field(j).Interface()))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func fieldLabel(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}
