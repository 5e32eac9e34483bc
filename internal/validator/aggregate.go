package validator

import (
	"sort"

	"github.com/wharton/dfcv/internal/value"
)

// ColumnTally counts problem verdicts for one column.
type ColumnTally struct {
	ValueLost    int
	TypeMismatch int
}

// Total returns the column's combined problem count.
func (t ColumnTally) Total() int {
	return t.ValueLost + t.TypeMismatch
}

// Aggregator folds verdicts into per-column and per-row tallies.
//
// Counts are always exact. The retained row-key sample is bounded by
// maxOffenders; it keeps the canonically-smallest keys, which makes the
// cap a min-N semilattice: capping commutes with merging, so any merge
// order over disjoint row partitions yields the same state.
//
// Accumulate calls for the same row must be contiguous (all columns of a
// row before the next row), and Flush must be called once scanning ends.
// The runner guarantees both. Aggregator is not safe for concurrent use;
// each worker owns one and partial states meet only in Merge.
type Aggregator struct {
	maxOffenders int

	columns     map[string]*ColumnTally
	problemRows int

	// rowSample maps canonical key to the original key value, capped at
	// maxOffenders entries (smallest canonical forms retained).
	rowSample map[string]value.Value

	curCanon   string
	curKey     value.Value
	curProblem bool
	open       bool
}

// NewAggregator creates an empty aggregator. maxOffenders bounds the
// retained row-key sample; values < 1 retain nothing.
func NewAggregator(maxOffenders int) *Aggregator {
	return &Aggregator{
		maxOffenders: maxOffenders,
		columns:      make(map[string]*ColumnTally),
		rowSample:    make(map[string]value.Value),
	}
}

// Accumulate records one (column, row) verdict. Clean verdicts only close
// out row grouping; they leave no trace in the state.
func (a *Aggregator) Accumulate(column string, rowKey value.Value, v Verdict) {
	canon := value.Canonical(rowKey)
	if !a.open || canon != a.curCanon {
		a.closeRow()
		a.curCanon = canon
		a.curKey = rowKey
		a.curProblem = false
		a.open = true
	}

	if !v.Problem() {
		return
	}

	tally, ok := a.columns[column]
	if !ok {
		tally = &ColumnTally{}
		a.columns[column] = tally
	}
	switch v {
	case VerdictValueLost:
		tally.ValueLost++
	case VerdictTypeMismatch:
		tally.TypeMismatch++
	}
	a.curProblem = true
}

// Flush closes the row in progress. Idempotent.
func (a *Aggregator) Flush() {
	a.closeRow()
	a.open = false
}

func (a *Aggregator) closeRow() {
	if !a.open || !a.curProblem {
		return
	}
	a.problemRows++
	a.addSample(a.curCanon, a.curKey)
	a.curProblem = false
}

func (a *Aggregator) addSample(canon string, key value.Value) {
	if a.maxOffenders < 1 {
		return
	}
	if _, ok := a.rowSample[canon]; ok {
		return
	}
	a.rowSample[canon] = key
	if len(a.rowSample) <= a.maxOffenders {
		return
	}
	// Over cap: evict the canonically largest key.
	var largest string
	for c := range a.rowSample {
		if c > largest {
			largest = c
		}
	}
	delete(a.rowSample, largest)
}

// Merge folds other into a. Correct only over disjoint row partitions:
// row counts add because no row appears in two partials. Both sides are
// flushed first. other must not be used afterwards.
func (a *Aggregator) Merge(other *Aggregator) {
	a.Flush()
	other.Flush()

	for col, t := range other.columns {
		mine, ok := a.columns[col]
		if !ok {
			a.columns[col] = t
			continue
		}
		mine.ValueLost += t.ValueLost
		mine.TypeMismatch += t.TypeMismatch
	}
	a.problemRows += other.problemRows
	for canon, key := range other.rowSample {
		a.addSample(canon, key)
	}
}

// ProblemRowCount returns the exact number of distinct rows with at
// least one problem verdict.
func (a *Aggregator) ProblemRowCount() int {
	return a.problemRows
}

// ProblemColumns returns the offending column names, sorted.
func (a *Aggregator) ProblemColumns() []string {
	cols := make([]string, 0, len(a.columns))
	for col := range a.columns {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// Tally returns the tally for one column, zero-valued if clean.
func (a *Aggregator) Tally(column string) ColumnTally {
	if t, ok := a.columns[column]; ok {
		return *t
	}
	return ColumnTally{}
}

// SampledRows returns the retained offending row keys, sorted by
// canonical form.
func (a *Aggregator) SampledRows() []value.Value {
	keys := make([]value.Value, 0, len(a.rowSample))
	for _, k := range a.rowSample {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}
