// Package export writes engine tables to files and terminals: CSV and XLSX
// downloads, go-pretty text and markdown tables, JSON and YAML documents.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/marksheet/engine"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatXLSX     Format = "xlsx"
)

// Formats lists every format in help order.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON, FormatYAML, FormatXLSX}

// ErrUnknownFormat is returned by ParseFormat for names it does not know.
var ErrUnknownFormat = errors.New("unknown output format")

// DefaultSheet is the worksheet name XLSX uses when none is given.
const DefaultSheet = "Results"

// ParseFormat maps a user-supplied name ("md", "yml", "TEXT") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "table", "":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Extension returns the file extension for f, dot included.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	}
	return "." + string(f)
}

// ContentType returns the MIME type used for downloads of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// CSV encodes t with its header row. Missing cells are empty.
func CSV(t *engine.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header()); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.Records()); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX encodes t as a single-sheet workbook. Numbers are stored as numbers
// and missing cells are left blank.
func XLSX(t *engine.Table, sheet string) ([]byte, error) {
	sheet = SheetName(sheet)
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, 0, len(t.Columns)+1)
	for _, h := range t.Header() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, 0, len(row)+1)
		if t.Labeled() {
			cells = append(cells, t.RowLabels[r])
		}
		for c := range t.Columns {
			var cell interface{}
			if c < len(row) {
				v := row[c]
				switch {
				case v.Missing:
				case v.Numeric:
					cell = v.Num
				default:
					cell = v.Raw
				}
			}
			cells = append(cells, cell)
		}
		addr, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetReplacer drops the characters Excel rejects in sheet names.
var sheetReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")", ":", "-",
)

// SheetName turns a table title into a valid worksheet name: at most 31
// characters, none of / \ ? * [ ] :, falling back to DefaultSheet.
func SheetName(title string) string {
	name := strings.TrimSpace(sheetReplacer.Replace(title))
	if r := []rune(name); len(r) > 31 {
		name = strings.TrimSpace(string(r[:31]))
	}
	if name == "" {
		return DefaultSheet
	}
	return name
}

// Write renders t to w in the given format.
func Write(w io.Writer, t *engine.Table, format Format) error {
	switch format {
	case FormatText, "":
		return writePretty(w, t, false)
	case FormatMarkdown:
		return writePretty(w, t, true)
	case FormatCSV:
		b, err := CSV(t)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case FormatYAML:
		return writeYAML(w, t)
	case FormatXLSX:
		b, err := XLSX(t, t.Title)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteResult renders a Result: the table followed by its text lines.
// JSON and YAML encode the whole result as one document.
func WriteResult(w io.Writer, res *engine.Result, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		doc := yamlDoc{Operation: res.Operation, Title: res.Title, Lines: res.Lines}
		if res.Table != nil {
			doc.Rows = res.Table.Maps()
		}
		return encodeYAML(w, doc)
	}
	if res.Table != nil {
		if err := Write(w, res.Table, format); err != nil {
			return err
		}
	}
	if format == FormatCSV || format == FormatXLSX {
		return nil
	}
	for _, line := range res.Lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writePretty(w io.Writer, t *engine.Table, markdown bool) error {
	if t.Len() == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	if !markdown && t.Title != "" {
		tw.SetTitle(t.Title)
	}

	header := make(table.Row, 0, len(t.Columns)+1)
	for _, h := range t.Header() {
		header = append(header, h)
	}
	tw.AppendHeader(header)

	for _, line := range t.Display() {
		row := make(table.Row, len(line))
		for i, cell := range line {
			row[i] = cell
		}
		tw.AppendRow(row)
	}

	if markdown {
		if t.Title != "" {
			if _, err := fmt.Fprintf(w, "### %s\n\n", t.Title); err != nil {
				return err
			}
		}
		tw.RenderMarkdown()
		return nil
	}
	tw.Render()
	return nil
}

type yamlDoc struct {
	Operation string                   `yaml:"operation,omitempty"`
	Title     string                   `yaml:"title"`
	Rows      []map[string]interface{} `yaml:"rows"`
	Lines     []string                 `yaml:"lines,omitempty"`
}

func writeYAML(w io.Writer, t *engine.Table) error {
	return encodeYAML(w, yamlDoc{Title: t.Title, Rows: t.Maps()})
}

func encodeYAML(w io.Writer, doc yamlDoc) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write yaml: %w", err)
	}
	return enc.Close()
}
