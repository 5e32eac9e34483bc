package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharton/dfcv/internal/value"
)

func TestMemTableAppendAndScan(t *testing.T) {
	tbl := NewMem("pk", "name")
	require.NoError(t, tbl.Append(1, "alice"))
	require.NoError(t, tbl.Append(2, nil))

	assert.Equal(t, []string{"pk", "name"}, tbl.Columns())
	assert.Equal(t, 2, tbl.RowCount())

	var rows []Row
	for _, part := range tbl.Partitions() {
		require.NoError(t, part.Scan(func(r Row) error {
			rows = append(rows, r)
			return nil
		}))
	}
	require.Len(t, rows, 2)
	assert.Equal(t, value.Number(1), rows[0].Get("pk"))
	assert.Equal(t, value.String("alice"), rows[0].Get("name"))
	assert.True(t, value.IsNull(rows[1].Get("name")))
}

func TestMemTableAppendArityError(t *testing.T) {
	tbl := NewMem("pk", "name")
	assert.Error(t, tbl.Append(1))
}

func TestRowGetMissingColumnIsNull(t *testing.T) {
	row := Row{"a": value.Number(1)}
	assert.True(t, value.IsNull(row.Get("missing")))
}

func TestMemTablePartitionsCoverAllRowsInOrder(t *testing.T) {
	tbl := NewMem("pk")
	for i := 0; i < 10; i++ {
		require.NoError(t, tbl.Append(i))
	}
	tbl.SetPartitions(3)

	parts := tbl.Partitions()
	require.Len(t, parts, 3)

	var seen []float64
	for _, part := range parts {
		require.NoError(t, part.Scan(func(r Row) error {
			seen = append(seen, float64(r.Get("pk").(value.Number)))
			return nil
		}))
	}
	require.Len(t, seen, 10)
	for i, v := range seen {
		assert.Equal(t, float64(i), v)
	}
}

func TestMemTableMorePartitionsThanRows(t *testing.T) {
	tbl := NewMem("pk").MustAppend(1).MustAppend(2)
	tbl.SetPartitions(8)
	assert.Len(t, tbl.Partitions(), 2)

	empty := NewMem("pk").SetPartitions(4)
	assert.Empty(t, empty.Partitions())
}

func TestMemTableScanStopsOnError(t *testing.T) {
	tbl := NewMem("pk").MustAppend(1).MustAppend(2).MustAppend(3)
	boom := errors.New("boom")

	n := 0
	err := tbl.Partitions()[0].Scan(func(Row) error {
		n++
		if n == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, n)
}

func TestAddKeyColumn(t *testing.T) {
	tbl := NewMem("name").MustAppend("a").MustAppend("b")
	require.NoError(t, tbl.AddKeyColumn("pk", func(i int) value.Value {
		return value.Number(float64(100 + i))
	}))

	assert.Equal(t, []string{"name", "pk"}, tbl.Columns())
	var keys []value.Value
	for _, part := range tbl.Partitions() {
		require.NoError(t, part.Scan(func(r Row) error {
			keys = append(keys, r.Get("pk"))
			return nil
		}))
	}
	assert.Equal(t, []value.Value{value.Number(100), value.Number(101)}, keys)

	assert.Error(t, tbl.AddKeyColumn("pk", func(int) value.Value { return value.Null{} }))
}
