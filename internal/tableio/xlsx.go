package tableio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"propostas/internal/model"
)

// OutputSheet is the sheet name of written workbooks.
const OutputSheet = "Propostas"

const outputColWidth = 18

func readXLSX(r io.Reader, opts Options) (*Source, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer file.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyTable
		}
		sheet = sheets[0]
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	// GetRows trims trailing empty cells, so widths vary per row. Cells past
	// the header get "Unnamed: N" columns.
	width := 0
	for _, cells := range rows {
		width = max(width, len(cells))
	}
	rawHeader := make([]string, width)
	copy(rawHeader, rows[0])
	header := headerNames(rawHeader)

	src := &Source{
		Table:    model.NewTable(header),
		Format:   FormatXLSX,
		Encoding: "utf-8",
		Sheet:    sheet,
	}
	for _, cells := range rows[1:] {
		src.Table.Append(buildRow(header, cells))
	}
	return src, nil
}

func writeXLSX(w io.Writer, table *model.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", OutputSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(OutputSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(OutputSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i := range table.Rows {
		cells := table.Cells(i)
		for j, v := range cells {
			cells[j] = xlsxValue(v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(OutputSheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(table.Columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(table.Columns))
		if err := f.SetColWidth(OutputSheet, "A", last, outputColWidth); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("save excel: %w", err)
	}
	return nil
}

// xlsxValue converts a cell value into something excelize stores natively.
// Decoded JSON numbers become numeric cells; objects and arrays become text.
func xlsxValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, float64, int, int64:
		return val
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return model.Text(val)
	}
}
