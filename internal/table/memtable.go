package table

import (
	"fmt"

	"github.com/wharton/dfcv/internal/value"
)

// MemTable is an in-memory Table used by tests and small datasets.
// Rows are stored in append order; partitioning splits that order into
// contiguous chunks.
type MemTable struct {
	columns []string
	rows    []Row
	parts   int
}

// NewMem creates an empty in-memory table with the given columns.
// The table starts with a single partition.
func NewMem(columns ...string) *MemTable {
	return &MemTable{
		columns: append([]string(nil), columns...),
		parts:   1,
	}
}

// Append adds one row. Cells are given positionally, matching the column
// order, and are lifted with value.FromAny (nil becomes null).
func (t *MemTable) Append(cells ...any) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	row := make(Row, len(cells))
	for i, c := range cells {
		row[t.columns[i]] = value.FromAny(c)
	}
	t.rows = append(t.rows, row)
	return nil
}

// MustAppend is Append for fixture construction; it panics on arity errors.
func (t *MemTable) MustAppend(cells ...any) *MemTable {
	if err := t.Append(cells...); err != nil {
		panic(err)
	}
	return t
}

// AddKeyColumn appends a surrogate key column whose value for row i is
// gen(i). Fails if the column already exists.
func (t *MemTable) AddKeyColumn(name string, gen func(rowIndex int) value.Value) error {
	if HasColumn(t, name) {
		return fmt.Errorf("column %q already exists", name)
	}
	t.columns = append(t.columns, name)
	for i, row := range t.rows {
		row[name] = gen(i)
	}
	return nil
}

// SetPartitions splits the table into n contiguous partitions.
// n < 1 is treated as 1.
func (t *MemTable) SetPartitions(n int) *MemTable {
	if n < 1 {
		n = 1
	}
	t.parts = n
	return t
}

// Columns implements Table.
func (t *MemTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

// RowCount implements Table.
func (t *MemTable) RowCount() int {
	return len(t.rows)
}

// Partitions implements Table. Empty partitions are elided, so a table
// with fewer rows than partitions returns fewer partitions.
func (t *MemTable) Partitions() []Partition {
	n := t.parts
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n == 0 {
		return nil
	}
	parts := make([]Partition, 0, n)
	chunk := (len(t.rows) + n - 1) / n
	for start := 0; start < len(t.rows); start += chunk {
		end := start + chunk
		if end > len(t.rows) {
			end = len(t.rows)
		}
		parts = append(parts, memPartition(t.rows[start:end]))
	}
	return parts
}

type memPartition []Row

func (p memPartition) Scan(fn func(Row) error) error {
	for _, row := range p {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}
