package model

// Table is an ordered sequence of rows with an explicit column order.
// Rows may lack some columns; those cells render empty.
type Table struct {
	Columns []string
	Rows    []*Row
}

// NewTable creates a table with the given column order.
func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row.
func (t *Table) Append(r *Row) {
	t.Rows = append(t.Rows, r)
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Cells returns row i as a slice aligned with Columns. Missing cells are nil.
func (t *Table) Cells(i int) []any {
	row := t.Rows[i]
	cells := make([]any, len(t.Columns))
	for j, col := range t.Columns {
		if v, ok := row.Get(col); ok {
			cells[j] = v
		}
	}
	return cells
}
