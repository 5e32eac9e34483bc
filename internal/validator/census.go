package validator

import (
	"github.com/wharton/dfcv/internal/table"
	"github.com/wharton/dfcv/internal/value"
)

// CountNulls tallies null cells per column across the whole table.
// Every declared column appears in the result, clean columns with zero.
func CountNulls(t table.Table) (map[string]int, error) {
	cols := t.Columns()
	counts := make(map[string]int, len(cols))
	for _, c := range cols {
		counts[c] = 0
	}
	for _, part := range t.Partitions() {
		err := part.Scan(func(row table.Row) error {
			for _, c := range cols {
				if value.IsNull(row.Get(c)) {
					counts[c]++
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return counts, nil
}

// SelectRows returns the rows of t whose keyColumn value is in keys, in
// table order, projected to the given columns (nil keeps the full row).
// The key column is always included in projected rows. Used for report
// drill-down: feed it Report.OffendingRows to see the data that regressed.
func SelectRows(t table.Table, keyColumn string, keys []value.Value, columns []string) ([]table.Row, error) {
	if !table.HasColumn(t, keyColumn) {
		return nil, NewMissingKeyError(keyColumn, "table")
	}
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[value.Canonical(k)] = struct{}{}
	}

	project := columns
	if project != nil && !contains(project, keyColumn) {
		project = append([]string{keyColumn}, project...)
	}

	var out []table.Row
	for _, part := range t.Partitions() {
		err := part.Scan(func(row table.Row) error {
			if _, ok := want[value.Canonical(row.Get(keyColumn))]; !ok {
				return nil
			}
			if project == nil {
				copied := make(table.Row, len(row))
				for c, v := range row {
					copied[c] = v
				}
				out = append(out, copied)
				return nil
			}
			projected := make(table.Row, len(project))
			for _, c := range project {
				projected[c] = row.Get(c)
			}
			out = append(out, projected)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func contains(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}
