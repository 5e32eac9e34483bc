package validator

import (
	"sort"

	"github.com/wharton/dfcv/internal/table"
	"github.com/wharton/dfcv/internal/value"
)

// AlignedPair is one row matched across both tables by primary key.
// Produced only when the key occurs exactly once on each side.
type AlignedPair struct {
	Key    value.Value
	Before table.Row
	After  table.Row
}

// MatchResult holds the outcome of aligning two tables on a key.
//
// The three key slices are sorted by canonical form for deterministic
// reporting. Aligned pairs keep before-table row order.
type MatchResult struct {
	Aligned []AlignedPair

	// UnmatchedBefore holds keys occurring exactly once in before and
	// never in after; UnmatchedAfter the reverse.
	UnmatchedBefore []value.Value
	UnmatchedAfter  []value.Value

	// Ambiguous holds keys occurring more than once in either table.
	// They are excluded from alignment: duplicates must never be merged
	// or arbitrarily paired, correctness depends on a 1:1 correspondence.
	Ambiguous []value.Value
}

type keyEntry struct {
	key   value.Value
	row   table.Row
	count int
}

// Match aligns before and after rows on keyColumn.
//
// Both tables are scanned once to build a key index; neither is mutated.
// Fails with ConfigurationError if keyColumn is absent from either table.
func Match(before, after table.Table, keyColumn string) (*MatchResult, error) {
	if !table.HasColumn(before, keyColumn) {
		return nil, NewMissingKeyError(keyColumn, "before")
	}
	if !table.HasColumn(after, keyColumn) {
		return nil, NewMissingKeyError(keyColumn, "after")
	}

	afterIdx, err := indexByKey(after, keyColumn)
	if err != nil {
		return nil, err
	}

	beforeIdx := make(map[string]*keyEntry)
	var beforeOrder []string
	for _, part := range before.Partitions() {
		err := part.Scan(func(row table.Row) error {
			k := row.Get(keyColumn)
			canon := value.Canonical(k)
			if e, ok := beforeIdx[canon]; ok {
				e.count++
				return nil
			}
			beforeIdx[canon] = &keyEntry{key: k, row: row, count: 1}
			beforeOrder = append(beforeOrder, canon)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	res := &MatchResult{}
	ambiguous := make(map[string]value.Value)

	for _, canon := range beforeOrder {
		be := beforeIdx[canon]
		ae := afterIdx[canon]
		switch {
		case be.count > 1 || (ae != nil && ae.count > 1):
			ambiguous[canon] = be.key
		case ae == nil:
			res.UnmatchedBefore = append(res.UnmatchedBefore, be.key)
		default:
			res.Aligned = append(res.Aligned, AlignedPair{Key: be.key, Before: be.row, After: ae.row})
		}
	}

	for canon, ae := range afterIdx {
		if _, seen := beforeIdx[canon]; seen {
			continue
		}
		if ae.count > 1 {
			ambiguous[canon] = ae.key
			continue
		}
		res.UnmatchedAfter = append(res.UnmatchedAfter, ae.key)
	}

	for _, k := range ambiguous {
		res.Ambiguous = append(res.Ambiguous, k)
	}

	sortKeys(res.UnmatchedBefore)
	sortKeys(res.UnmatchedAfter)
	sortKeys(res.Ambiguous)
	return res, nil
}

func indexByKey(t table.Table, keyColumn string) (map[string]*keyEntry, error) {
	idx := make(map[string]*keyEntry)
	for _, part := range t.Partitions() {
		err := part.Scan(func(row table.Row) error {
			k := row.Get(keyColumn)
			canon := value.Canonical(k)
			if e, ok := idx[canon]; ok {
				e.count++
				return nil
			}
			idx[canon] = &keyEntry{key: k, row: row, count: 1}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func sortKeys(keys []value.Value) {
	sort.Slice(keys, func(i, j int) bool {
		return value.Canonical(keys[i]) < value.Canonical(keys[j])
	})
}
