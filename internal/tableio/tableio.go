package tableio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"propostas/internal/model"
)

var (
	// ErrUnsupportedFormat is returned for extensions the reader cannot open.
	ErrUnsupportedFormat = errors.New("unsupported table format")
	// ErrEmptyTable is returned when the input has no header row.
	ErrEmptyTable = errors.New("table has no header row")
)

// Format is a table file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Options tunes reading and writing.
type Options struct {
	// Delimiter for CSV: "auto", ",", ";", "\t" or "tab". Auto sniffs the
	// header line when reading and writes ','.
	Delimiter string
	// Sheet to read from a workbook. Empty means the first sheet.
	Sheet string
}

// Warning is a non-fatal problem found while reading.
type Warning struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Source is a table read from a file.
type Source struct {
	Table    *model.Table
	Format   Format
	Encoding string
	Sheet    string
	Warnings []Warning
}

// DetectFormat maps a file name to a format by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xls":
		return "", fmt.Errorf("%w: legacy .xls workbooks must be saved as .xlsx", ErrUnsupportedFormat)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadFile reads the table stored at path.
func ReadFile(path string, opts Options) (*Source, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return Read(f, format, opts)
}

// Read reads a table in the given format.
func Read(r io.Reader, format Format, opts Options) (*Source, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(r, opts)
	case FormatCSV:
		return readCSV(r, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteFile writes table to path in the format implied by its extension.
// The file is written to a temporary name first and renamed into place.
func WriteFile(path string, table *model.Table, opts Options) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := Write(f, format, table, opts); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Write writes table in the given format.
func Write(w io.Writer, format Format, table *model.Table, opts Options) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(w, table)
	case FormatCSV:
		return writeCSV(w, table, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// headerNames trims and NFC-normalises header cells, names blank ones
// "Unnamed: N" and suffixes repeats with ".1", ".2", ...
func headerNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := normalizeHeader(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			for n := 1; ; n++ {
				candidate := fmt.Sprintf("%s.%d", name, n)
				if !seen[candidate] {
					name = candidate
					break
				}
			}
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

// buildRow maps cells onto header names. Empty cells become nil.
func buildRow(header, cells []string) *model.Row {
	row := model.NewRow(len(header))
	for i, h := range header {
		var v any
		if i < len(cells) && cells[i] != "" {
			v = cells[i]
		}
		row.Set(h, v)
	}
	return row
}
