package table

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wharton/dfcv/internal/value"
)

// SQLiteTable exposes one table of a SQLite database as a read-only,
// partitioned Table. It is the reference storage adapter used by the CLI;
// the validator core never touches SQL.
//
// Partitioning is by rowid range, so WITHOUT ROWID tables are scanned as a
// single partition.
type SQLiteTable struct {
	db       *sql.DB
	name     string
	columns  []string
	rowCount int
	parts    int
}

// OpenSQLite opens the named table inside the SQLite database at path.
// Column order and row count are captured at open time; the validator
// assumes the table does not change during a run.
func OpenSQLite(path, tableName string) (*SQLiteTable, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	t := &SQLiteTable{db: db, name: tableName, parts: 1}

	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(tableName)))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read schema for %q: %w", tableName, err)
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to read schema for %q: %w", tableName, err)
		}
		t.columns = append(t.columns, name)
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, err
	}
	if len(t.columns) == 0 {
		db.Close()
		return nil, fmt.Errorf("table %q not found or has no columns", tableName)
	}

	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(tableName))).Scan(&t.rowCount); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to count rows in %q: %w", tableName, err)
	}

	return t, nil
}

// Close closes the underlying database connection.
func (t *SQLiteTable) Close() error {
	return t.db.Close()
}

// SetPartitions splits scans into n rowid-range partitions.
func (t *SQLiteTable) SetPartitions(n int) *SQLiteTable {
	if n < 1 {
		n = 1
	}
	t.parts = n
	return t
}

// Columns implements Table.
func (t *SQLiteTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

// RowCount implements Table.
func (t *SQLiteTable) RowCount() int {
	return t.rowCount
}

// Partitions implements Table.
func (t *SQLiteTable) Partitions() []Partition {
	if t.rowCount == 0 {
		return nil
	}
	n := t.parts
	if n > t.rowCount {
		n = t.rowCount
	}
	var minID, maxID int64
	err := t.db.QueryRow(fmt.Sprintf("SELECT MIN(rowid), MAX(rowid) FROM %s", quoteIdent(t.name))).Scan(&minID, &maxID)
	if err != nil {
		// No usable rowid (WITHOUT ROWID table): single full scan.
		return []Partition{&sqlitePartition{table: t, full: true}}
	}
	span := maxID - minID + 1
	chunk := (span + int64(n) - 1) / int64(n)
	parts := make([]Partition, 0, n)
	for lo := minID; lo <= maxID; lo += chunk {
		hi := lo + chunk - 1
		if hi > maxID {
			hi = maxID
		}
		parts = append(parts, &sqlitePartition{table: t, lo: lo, hi: hi})
	}
	return parts
}

type sqlitePartition struct {
	table *SQLiteTable
	lo    int64
	hi    int64
	full  bool
}

func (p *sqlitePartition) Scan(fn func(Row) error) error {
	t := p.table
	cols := make([]string, len(t.columns))
	for i, c := range t.columns {
		cols[i] = quoteIdent(c)
	}
	var rows *sql.Rows
	var err error
	if p.full {
		rows, err = t.db.Query(fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteIdent(t.name)))
	} else {
		rows, err = t.db.Query(
			fmt.Sprintf("SELECT %s FROM %s WHERE rowid BETWEEN ? AND ? ORDER BY rowid", strings.Join(cols, ", "), quoteIdent(t.name)),
			p.lo, p.hi)
	}
	if err != nil {
		return fmt.Errorf("failed to scan %q: %w", t.name, err)
	}
	defer rows.Close()

	raw := make([]any, len(t.columns))
	ptrs := make([]any, len(t.columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan %q: %w", t.name, err)
		}
		row := make(Row, len(t.columns))
		for i, c := range t.columns {
			row[c] = value.FromAny(raw[i])
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// quoteIdent quotes a SQLite identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
