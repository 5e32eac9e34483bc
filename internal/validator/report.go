package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wharton/dfcv/internal/value"
)

// Shape is a (rows, columns) pair.
type Shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// CategoryCount is one problem category with its occurrence count.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Report is the final validation result. It owns copies of every key and
// column name it exposes, so it remains valid after the source tables are
// released.
type Report struct {
	// OriginalShape is the before table's shape, captured before any
	// comparison ran.
	OriginalShape Shape

	// ProblemShape counts distinct offending rows and columns. Exact
	// even when the retained samples below are truncated.
	ProblemShape Shape

	// Categories lists problem categories sorted by descending count,
	// ties broken by label, so output is stable across runs.
	Categories []CategoryCount

	// RowsTruncated and ColumnsTruncated indicate the corresponding
	// sample holds fewer identifiers than the true count.
	RowsTruncated    bool
	ColumnsTruncated bool

	// Key sets from matching, sorted by canonical form. Ambiguous and
	// unmatched keys are report data, not errors: partial validation
	// stays useful, and these sets keep a zero problem shape honest.
	UnmatchedBefore []value.Value
	UnmatchedAfter  []value.Value
	Ambiguous       []value.Value

	// NullDelta maps column name to nulls(after) - nulls(before), for
	// columns where the difference is nonzero.
	NullDelta map[string]int

	offendingRows []value.Value
	offendingCols []string
}

// BuildReport renders the merged aggregator state and match outcome into
// the final report. labels maps column name to caller-chosen category
// label; unmapped columns derive one. maxOffenders caps the retained
// offending-column sample (the row sample was capped in the aggregator).
func BuildReport(original Shape, agg *Aggregator, match *MatchResult, labels map[string]string, maxOffenders int) *Report {
	agg.Flush()

	cols := agg.ProblemColumns()

	byLabel := make(map[string]int)
	for _, col := range cols {
		byLabel[labelFor(col, labels)] += agg.Tally(col).Total()
	}
	categories := make([]CategoryCount, 0, len(byLabel))
	for label, count := range byLabel {
		categories = append(categories, CategoryCount{Label: label, Count: count})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Count != categories[j].Count {
			return categories[i].Count > categories[j].Count
		}
		return categories[i].Label < categories[j].Label
	})

	colSample := cols
	colsTruncated := false
	if maxOffenders >= 0 && len(colSample) > maxOffenders {
		colSample = colSample[:maxOffenders]
		colsTruncated = true
	}

	rows := agg.SampledRows()

	return &Report{
		OriginalShape:    original,
		ProblemShape:     Shape{Rows: agg.ProblemRowCount(), Columns: len(cols)},
		Categories:       categories,
		RowsTruncated:    agg.ProblemRowCount() > len(rows),
		ColumnsTruncated: colsTruncated,
		UnmatchedBefore:  copyKeys(match.UnmatchedBefore),
		UnmatchedAfter:   copyKeys(match.UnmatchedAfter),
		Ambiguous:        copyKeys(match.Ambiguous),
		offendingRows:    rows,
		offendingCols:    append([]string(nil), colSample...),
	}
}

// OffendingRows returns the retained offending row keys, sorted by
// canonical form. When RowsTruncated is set this is a sample; the exact
// count is ProblemShape.Rows.
func (r *Report) OffendingRows() []value.Value {
	return copyKeys(r.offendingRows)
}

// OffendingColumns returns the retained offending column names, sorted.
// When ColumnsTruncated is set this is a sample; the exact count is
// ProblemShape.Columns.
func (r *Report) OffendingColumns() []string {
	return append([]string(nil), r.offendingCols...)
}

// Render produces the human-readable summary block:
//
//	---------------
//	Original Shape:
//	    rows    - 469221
//	    columns - 582
//	Problem Shape:
//	    rows    - 1
//	    columns - 3
//	Details:
//	    ['ImproperDate (1)', 'ImproperTimestamp (1)', 'BadUpdateTime (1)']
//	---------------
func (r *Report) Render() string {
	details := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		details[i] = fmt.Sprintf("'%s (%d)'", c.Label, c.Count)
	}

	var b strings.Builder
	b.WriteString("---------------\n")
	b.WriteString("Original Shape:\n")
	fmt.Fprintf(&b, "    rows    - %d\n", r.OriginalShape.Rows)
	fmt.Fprintf(&b, "    columns - %d\n", r.OriginalShape.Columns)
	b.WriteString("Problem Shape:\n")
	fmt.Fprintf(&b, "    rows    - %d\n", r.ProblemShape.Rows)
	fmt.Fprintf(&b, "    columns - %d\n", r.ProblemShape.Columns)
	b.WriteString("Details:\n")
	fmt.Fprintf(&b, "    [%s]\n", strings.Join(details, ", "))
	b.WriteString("---------------\n")
	return b.String()
}

func copyKeys(keys []value.Value) []value.Value {
	return append([]value.Value(nil), keys...)
}
