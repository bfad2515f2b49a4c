package tableio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"propostas/internal/model"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText converts input bytes to UTF-8 and names the detected encoding.
// Bytes that are not valid UTF-8 are taken as Windows-1252, the usual export
// encoding of spreadsheet tools on Brazilian Windows machines.
func decodeText(data []byte) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, "", fmt.Errorf("decode utf-16: %w", err)
		}
		return out, "utf-16", nil
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case utf8.Valid(data):
		return data, "utf-8", nil
	default:
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, "", fmt.Errorf("decode windows-1252: %w", err)
		}
		return out, "windows-1252", nil
	}
}

func normalizeHeader(h string) string {
	return norm.NFC.String(strings.TrimSpace(h))
}

// delimiterRune resolves the configured delimiter. "auto" sniffs the first
// line, ignoring quoted text: ';' wins over ',' when it occurs more often, tab
// when it dominates.
func delimiterRune(setting string, firstLine string) rune {
	switch setting {
	case ",":
		return ','
	case ";":
		return ';'
	case "\t", "tab":
		return '\t'
	case "|":
		return '|'
	}
	if firstLine == "" {
		return ','
	}
	commas, semis, tabs := countSeparators(firstLine)
	switch {
	case tabs > commas && tabs > semis:
		return '\t'
	case semis > commas:
		return ';'
	default:
		return ','
	}
}

// countSeparators counts candidate delimiters outside double-quoted spans.
// A doubled quote inside a span toggles twice and stays inside.
func countSeparators(line string) (commas, semis, tabs int) {
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == ',':
			commas++
		case r == ';':
			semis++
		case r == '\t':
			tabs++
		}
	}
	return commas, semis, tabs
}

func firstLine(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if sc.Scan() {
		return sc.Text()
	}
	return ""
}

func readCSV(r io.Reader, opts Options) (*Source, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data, encoding, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiterRune(opts.Delimiter, firstLine(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headerCells, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyTable
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	header := headerNames(headerCells)
	src := &Source{
		Table:    model.NewTable(header),
		Format:   FormatCSV,
		Encoding: encoding,
	}

	line := 1 // header is record 1
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			src.Warnings = append(src.Warnings, Warning{Row: line, Message: fmt.Sprintf("parse error: %v", err)})
			continue
		}
		if len(cells) > len(header) {
			src.Warnings = append(src.Warnings, Warning{
				Row:     line,
				Message: fmt.Sprintf("row has %d fields, expected %d; skipped", len(cells), len(header)),
			})
			continue
		}
		src.Table.Append(buildRow(header, cells))
	}

	return src, nil
}

func writeCSV(w io.Writer, table *model.Table, opts Options) error {
	if _, err := w.Write(bomUTF8); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiterRune(opts.Delimiter, "")
	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for i := range table.Rows {
		for j, v := range table.Cells(i) {
			record[j] = model.Text(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
