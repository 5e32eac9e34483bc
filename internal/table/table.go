// Package table defines the abstract tabular interface the validator reads
// from, plus two reference implementations: an in-memory table for tests and
// small datasets, and a SQLite-backed table for the CLI.
//
// The validator core only depends on Table and Partition. A distributed
// execution engine can satisfy the same interface; the core never assumes
// rows are materialized in one place, only that each partition can be
// scanned in a stable order.
package table

import (
	"github.com/wharton/dfcv/internal/value"
)

// Row maps column name to cell value. Missing cells read as null.
type Row map[string]value.Value

// Get returns the cell for col, lifting absent cells to Null.
func (r Row) Get(col string) value.Value {
	if v, ok := r[col]; ok && v != nil {
		return v
	}
	return value.Null{}
}

// Table is a read-only, partitioned view of tabular data.
//
// Implementations must be safe for concurrent Scan calls on distinct
// partitions; the validator never mutates a table.
type Table interface {
	// Columns returns the column names in declaration order.
	Columns() []string

	// RowCount returns the total number of rows across all partitions.
	RowCount() int

	// Partitions returns the table's partitions. Scanning the partitions
	// in slice order visits every row exactly once, in table row order.
	Partitions() []Partition
}

// Partition is a scannable slice of a table's rows.
type Partition interface {
	// Scan calls fn once per row, in partition order. It stops and
	// returns fn's error on the first non-nil result.
	Scan(fn func(Row) error) error
}

// HasColumn reports whether t declares col.
func HasColumn(t Table, col string) bool {
	for _, c := range t.Columns() {
		if c == col {
			return true
		}
	}
	return false
}
