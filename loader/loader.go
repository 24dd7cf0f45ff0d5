// Package loader reads CSV and XLSX files into a dataset.Dataset. Every
// failure is reported as a single *Error; no partial dataset is returned.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/marksheet/dataset"
	"github.com/spektr-org/marksheet/logging"
)

var (
	// ErrUnsupportedFormat is returned for file types other than CSV and XLSX.
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrMalformed is returned when the content cannot be parsed into a table.
	ErrMalformed = errors.New("malformed file")
)

// Error is the ingestion error surfaced to users.
type Error struct {
	Source string // file name as given by the caller
	Kind   error  // ErrUnsupportedFormat or ErrMalformed
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("cannot load %s: %v", e.Source, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

func malformed(source, detail string, cause error) *Error {
	return &Error{Source: source, Kind: ErrMalformed, Detail: detail, Cause: cause}
}

// Format is a supported input format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from a file name's extension.
func DetectFormat(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		if ext == "" {
			ext = "(none)"
		}
		return "", &Error{
			Source: name,
			Kind:   ErrUnsupportedFormat,
			Detail: fmt.Sprintf("extension %s; expected .csv or .xlsx", ext),
		}
	}
}

// Load parses r as the format implied by name.
func Load(name string, r io.Reader) (*dataset.Dataset, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	var header []string
	var records [][]string
	switch format {
	case FormatCSV:
		header, records, err = readCSV(name, r)
	case FormatXLSX:
		header, records, err = readXLSX(name, r)
	}
	if err != nil {
		return nil, err
	}

	ds, err := dataset.FromRecords(filepath.Base(name), header, records)
	if err != nil {
		return nil, malformed(name, "", err)
	}
	logging.Logger().Debug("dataset loaded",
		"source", name, "format", string(format), "rows", ds.Len(), "columns", ds.Width())
	return ds, nil
}

// LoadFile opens and parses the file at path.
func LoadFile(path string) (*dataset.Dataset, error) {
	if _, err := DetectFormat(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, malformed(path, "cannot open file", err)
	}
	defer f.Close()
	return Load(path, f)
}

// splitHeader separates the header row from the data rows and rejects
// empty and header-only inputs, and rows with values past the last header
// column. Blank trailing cells are dropped later by dataset.FromRecords.
func splitHeader(source string, rows [][]string) ([]string, [][]string, error) {
	if len(rows) == 0 {
		return nil, nil, malformed(source, "file is empty", nil)
	}
	header := rows[0]
	if isBlank(header) {
		return nil, nil, malformed(source, "header row is empty", nil)
	}
	if len(rows) == 1 {
		return nil, nil, malformed(source, "no data rows below the header", nil)
	}
	for i, row := range rows[1:] {
		if len(row) > len(header) && !isBlank(row[len(header):]) {
			return nil, nil, malformed(source,
				fmt.Sprintf("data row %d has %d fields, header has %d", i+1, len(row), len(header)), nil)
		}
	}
	return header, rows[1:], nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
