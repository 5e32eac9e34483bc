package validator

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wharton/dfcv/internal/config"
	"github.com/wharton/dfcv/internal/table"
)

// Validator runs one before/after comparison. Construct with New, which
// fails fast on configuration problems; a constructed Validator always
// produces a report.
type Validator struct {
	before table.Table
	after  table.Table
	opts   *config.Options
	cmp    *Comparator

	// compareCols: columns present in both tables, key excluded, in
	// before-table order. Columns on one side only cannot form a pair;
	// they surface through NullDelta, not verdicts.
	compareCols []string
}

// New validates configuration against both tables and builds a Validator.
//
// Fails with ConfigurationError when the key column is missing from
// either table or when the expected-type or label maps reference a column
// the before table does not have.
func New(before, after table.Table, opts *config.Options) (*Validator, error) {
	if err := opts.Validate(); err != nil {
		return nil, &ConfigurationError{Code: ErrCodeInvalidOptions, Message: err.Error()}
	}
	if !table.HasColumn(before, opts.PrimaryKey) {
		return nil, NewMissingKeyError(opts.PrimaryKey, "before")
	}
	if !table.HasColumn(after, opts.PrimaryKey) {
		return nil, NewMissingKeyError(opts.PrimaryKey, "after")
	}
	for col := range opts.ExpectedTypes {
		if !table.HasColumn(before, col) {
			return nil, NewUnknownColumnError(col, "expected_types")
		}
	}
	for col := range opts.Labels {
		if !table.HasColumn(before, col) {
			return nil, NewUnknownColumnError(col, "labels")
		}
	}

	var compareCols []string
	for _, col := range before.Columns() {
		if col != opts.PrimaryKey && table.HasColumn(after, col) {
			compareCols = append(compareCols, col)
		}
	}

	return &Validator{
		before:      before,
		after:       after,
		opts:        opts,
		cmp:         NewComparator(opts.ExpectedKinds(), opts.TreatEmptyAsNull),
		compareCols: compareCols,
	}, nil
}

// Run executes the comparison and builds the report.
//
// Aligned rows are split into contiguous chunks compared concurrently,
// one aggregator per worker, partial states merged afterwards. The merge
// contract makes the result independent of chunking and merge order, so
// Run is deterministic and idempotent for identical inputs.
func (v *Validator) Run(ctx context.Context) (*Report, error) {
	match, err := Match(v.before, v.after, v.opts.PrimaryKey)
	if err != nil {
		return nil, err
	}

	workers := v.opts.Parallelism
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunks := chunkPairs(match.Aligned, workers)
	partials := make([]*Aggregator, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range chunks {
		i := i
		g.Go(func() error {
			agg := NewAggregator(v.opts.MaxOffenders())
			for _, pair := range chunks[i] {
				if err := gctx.Err(); err != nil {
					return err
				}
				for _, col := range v.compareCols {
					verdict := v.cmp.Compare(col, pair.Before.Get(col), pair.After.Get(col))
					agg.Accumulate(col, pair.Key, verdict)
				}
			}
			agg.Flush()
			partials[i] = agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := NewAggregator(v.opts.MaxOffenders())
	for _, p := range partials {
		merged.Merge(p)
	}

	original := Shape{Rows: v.before.RowCount(), Columns: len(v.before.Columns())}
	report := BuildReport(original, merged, match, v.opts.Labels, v.opts.MaxOffenders())

	delta, err := v.nullDelta()
	if err != nil {
		return nil, err
	}
	report.NullDelta = delta
	return report, nil
}

// Validate is the one-shot form: construct and run.
func Validate(ctx context.Context, before, after table.Table, opts *config.Options) (*Report, error) {
	v, err := New(before, after, opts)
	if err != nil {
		return nil, err
	}
	return v.Run(ctx)
}

// nullDelta computes nulls(after) - nulls(before) per shared column,
// keeping nonzero entries only. This is the whole-table null census the
// report carries alongside the row-matched verdicts; it also covers rows
// that never aligned.
func (v *Validator) nullDelta() (map[string]int, error) {
	beforeNulls, err := CountNulls(v.before)
	if err != nil {
		return nil, err
	}
	afterNulls, err := CountNulls(v.after)
	if err != nil {
		return nil, err
	}
	delta := make(map[string]int)
	for col, after := range afterNulls {
		before, shared := beforeNulls[col]
		if !shared || after == before {
			continue
		}
		delta[col] = after - before
	}
	return delta, nil
}

// chunkPairs splits pairs into at most n contiguous chunks of near-equal
// size. Chunk boundaries never split a row, so per-chunk aggregators see
// whole rows and partition-disjointness holds for Merge.
func chunkPairs(pairs []AlignedPair, n int) [][]AlignedPair {
	if len(pairs) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if n > len(pairs) {
		n = len(pairs)
	}
	chunk := (len(pairs) + n - 1) / n
	var chunks [][]AlignedPair
	for start := 0; start < len(pairs); start += chunk {
		end := start + chunk
		if end > len(pairs) {
			end = len(pairs)
		}
		chunks = append(chunks, pairs[start:end])
	}
	return chunks
}
