package validator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wharton/dfcv/internal/config"
	"github.com/wharton/dfcv/internal/table"
	"github.com/wharton/dfcv/internal/value"
)

func date(y int, m time.Month, d int) value.Timestamp {
	return value.Timestamp(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// A string-to-timestamp conversion that nulled one poorly formed date.
func conversionFixture() (*table.MemTable, *table.MemTable) {
	before := table.NewMem("pk", "date").
		MustAppend(1, "2020-01-01").
		MustAppend(2, "2020-02-01").
		MustAppend(3, "2020-03-01")
	after := table.NewMem("pk", "date").
		MustAppend(1, date(2020, 1, 1)).
		MustAppend(2, nil).
		MustAppend(3, date(2020, 3, 1))
	return before, after
}

func TestValidateConversionWithOneLoss(t *testing.T) {
	before, after := conversionFixture()
	opts := &config.Options{
		PrimaryKey:    "pk",
		ExpectedTypes: map[string]string{"date": "timestamp"},
	}

	report, err := Validate(context.Background(), before, after, opts)
	require.NoError(t, err)

	assert.Equal(t, Shape{Rows: 3, Columns: 2}, report.OriginalShape)
	assert.Equal(t, Shape{Rows: 1, Columns: 1}, report.ProblemShape)
	assert.Equal(t, []CategoryCount{{Label: "ImproperDate", Count: 1}}, report.Categories)
	assert.Equal(t, []value.Value{value.Number(2)}, report.OffendingRows())
	assert.Equal(t, []string{"date"}, report.OffendingColumns())
	assert.Equal(t, map[string]int{"date": 1}, report.NullDelta)
	assert.Contains(t, report.Render(), "['ImproperDate (1)']")
}

func TestNewConfigurationErrors(t *testing.T) {
	before, after := conversionFixture()

	tests := []struct {
		name string
		opts *config.Options
	}{
		{"empty options", &config.Options{}},
		{"key missing from both", &config.Options{PrimaryKey: "id"}},
		{"unknown expected-type column", &config.Options{
			PrimaryKey:    "pk",
			ExpectedTypes: map[string]string{"nope": "timestamp"},
		}},
		{"unknown label column", &config.Options{
			PrimaryKey: "pk",
			Labels:     map[string]string{"nope": "Foo"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(before, after, tt.opts)
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestNewKeyMissingFromOneSide(t *testing.T) {
	before := table.NewMem("pk", "v")
	after := table.NewMem("id", "v")

	_, err := New(before, after, &config.Options{PrimaryKey: "pk"})
	require.Error(t, err)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeMissingKeyColumn, ce.Code)
	assert.Equal(t, "after", ce.Side)
}

// An ambiguous key is excluded from every column comparison and never
// reported as an offending row.
func TestAmbiguousKeyExcluded(t *testing.T) {
	before := table.NewMem("pk", "v").
		MustAppend(5, "x").
		MustAppend(5, "y").
		MustAppend(6, "kept")
	after := table.NewMem("pk", "v").
		MustAppend(5, nil).
		MustAppend(6, "kept")

	report, err := Validate(context.Background(), before, after, &config.Options{PrimaryKey: "pk"})
	require.NoError(t, err)

	assert.Equal(t, []value.Value{value.Number(5)}, report.Ambiguous)
	assert.Empty(t, report.OffendingRows())
	assert.Zero(t, report.ProblemShape.Rows)
}

// A key only present in after is unmatched, never a value loss.
func TestUnmatchedAfterKeyNotCounted(t *testing.T) {
	before := table.NewMem("pk", "v").MustAppend(1, "a")
	after := table.NewMem("pk", "v").MustAppend(1, "a").MustAppend(2, nil)

	report, err := Validate(context.Background(), before, after, &config.Options{PrimaryKey: "pk"})
	require.NoError(t, err)

	assert.Equal(t, []value.Value{value.Number(2)}, report.UnmatchedAfter)
	assert.Zero(t, report.ProblemShape.Rows)
	assert.Zero(t, report.ProblemShape.Columns)
}

// The report is producible even when nothing aligns; the key sets keep
// the zero problem shape honest.
func TestReportWithNothingAligned(t *testing.T) {
	before := table.NewMem("pk", "v").MustAppend(1, "a").MustAppend(2, "b")
	after := table.NewMem("pk", "v").MustAppend(3, "c").MustAppend(4, nil)

	report, err := Validate(context.Background(), before, after, &config.Options{PrimaryKey: "pk"})
	require.NoError(t, err)

	assert.Zero(t, report.ProblemShape.Rows)
	assert.Len(t, report.UnmatchedBefore, 2)
	assert.Len(t, report.UnmatchedAfter, 2)
	assert.Equal(t, Shape{Rows: 2, Columns: 2}, report.OriginalShape)
}

// With a cap of 10 and 1000 offending rows, the retained sample has
// exactly 10 keys, the report is marked truncated, and the count stays
// exact.
func TestOffenderCap(t *testing.T) {
	before := table.NewMem("pk", "v")
	after := table.NewMem("pk", "v")
	for i := 0; i < 1000; i++ {
		before.MustAppend(i, "present")
		after.MustAppend(i, nil)
	}

	opts := &config.Options{PrimaryKey: "pk", MaxOffendersRetained: 10}
	report, err := Validate(context.Background(), before, after, opts)
	require.NoError(t, err)

	assert.Equal(t, 1000, report.ProblemShape.Rows)
	assert.Len(t, report.OffendingRows(), 10)
	assert.True(t, report.RowsTruncated)
}

// Splitting the aligned rows across any worker count yields an identical
// report: partial aggregation merges are order-independent.
func TestReportIndependentOfParallelism(t *testing.T) {
	before := table.NewMem("pk", "a", "b")
	after := table.NewMem("pk", "a", "b")
	for i := 0; i < 97; i++ {
		before.MustAppend(i, "x", i)
		switch i % 5 {
		case 0:
			after.MustAppend(i, nil, i) // lost a
		case 1:
			after.MustAppend(i, "x", nil) // lost b
		default:
			after.MustAppend(i, "x", i)
		}
	}

	runWith := func(parallelism int) *Report {
		opts := &config.Options{PrimaryKey: "pk", Parallelism: parallelism, MaxOffendersRetained: 20}
		report, err := Validate(context.Background(), before, after, opts)
		require.NoError(t, err)
		return report
	}

	want := runWith(1)
	for _, p := range []int{2, 7, 13, 64} {
		got := runWith(p)
		assert.Equal(t, want.ProblemShape, got.ProblemShape, "parallelism=%d", p)
		assert.Equal(t, want.Categories, got.Categories, "parallelism=%d", p)
		assert.Equal(t, want.OffendingRows(), got.OffendingRows(), "parallelism=%d", p)
		assert.Equal(t, want.OffendingColumns(), got.OffendingColumns(), "parallelism=%d", p)
		assert.Equal(t, want.Render(), got.Render(), "parallelism=%d", p)
	}
}

// Running twice on the same immutable inputs yields identical reports.
func TestIdempotence(t *testing.T) {
	before, after := conversionFixture()
	opts := &config.Options{PrimaryKey: "pk", ExpectedTypes: map[string]string{"date": "timestamp"}}

	v, err := New(before, after, opts)
	require.NoError(t, err)

	first, err := v.Run(context.Background())
	require.NoError(t, err)
	second, err := v.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Render(), second.Render())
	assert.Equal(t, first.OffendingRows(), second.OffendingRows())
	assert.Equal(t, first.NullDelta, second.NullDelta)
}

// Columns present on one side only are skipped by the verdict pipeline
// but still visible through the null census when shared. A column the
// after table dropped entirely never panics the run.
func TestColumnOnlyInBeforeIsSkipped(t *testing.T) {
	before := table.NewMem("pk", "kept", "dropped").MustAppend(1, "a", "gone")
	after := table.NewMem("pk", "kept").MustAppend(1, "a")

	report, err := Validate(context.Background(), before, after, &config.Options{PrimaryKey: "pk"})
	require.NoError(t, err)
	assert.Zero(t, report.ProblemShape.Rows)
	assert.NotContains(t, report.NullDelta, "dropped")
}

func TestRunHonorsCancelledContext(t *testing.T) {
	before, after := conversionFixture()
	v, err := New(before, after, &config.Options{PrimaryKey: "pk"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = v.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCountNulls(t *testing.T) {
	tbl := table.NewMem("a", "b").
		MustAppend(nil, 1).
		MustAppend("x", nil).
		MustAppend(nil, nil)

	counts, err := CountNulls(tbl)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 2}, counts)
}

func TestSelectRows(t *testing.T) {
	tbl := table.NewMem("pk", "date", "extra").
		MustAppend(1, "2020-01-01", "e1").
		MustAppend(2, "2020-02-01", "e2").
		MustAppend(3, "2020-03-01", "e3")

	rows, err := SelectRows(tbl, "pk", []value.Value{value.Number(2)}, []string{"date"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, value.Number(2), rows[0].Get("pk"))
	assert.Equal(t, value.String("2020-02-01"), rows[0].Get("date"))
	assert.NotContains(t, rows[0], "extra")

	full, err := SelectRows(tbl, "pk", []value.Value{value.Number(2)}, nil)
	require.NoError(t, err)
	require.Len(t, full, 1)
	assert.Equal(t, value.String("e2"), full[0].Get("extra"))
}

func TestSelectRowsMissingKeyColumn(t *testing.T) {
	tbl := table.NewMem("id").MustAppend(1)
	_, err := SelectRows(tbl, "pk", nil, nil)
	assert.True(t, IsConfigurationError(err))
}
