// Package validator implements the conversion validation engine.
//
// The validator compares a table before a bulk column conversion with the
// same table after it, aligned row-by-row on a primary key, and reports
// which rows and columns lost information: non-null values that became
// null, and converted values whose kind does not match the expected one.
//
// ARCHITECTURE:
//
// Pure Partitioned Computation:
// The engine is a pure function of two immutable tables and an immutable
// options struct. It performs no I/O of its own and has no side effects on
// its inputs, so a run is idempotent and safe to restart.
//
// Pipeline:
//  1. Match aligns before/after rows by primary key. Keys missing from one
//     side are unmatched; duplicated keys are ambiguous and excluded (a
//     1:1 correspondence is required for a meaningful comparison).
//  2. Comparator classifies each (column, aligned row) cell pair into one
//     of five verdicts. Per-cell problems degrade to verdicts; they never
//     abort the run, so one bad column cannot hide problems elsewhere.
//  3. Aggregator folds verdicts into per-column and per-row tallies. Its
//     Merge is associative and commutative over disjoint row partitions,
//     so chunks of aligned rows are compared in parallel and partial
//     states merged in any order with identical results.
//  4. BuildReport renders the merged state into a Report that owns copies
//     of every identifier it exposes and stays valid after the tables are
//     released.
//
// DETERMINISM:
//
// Reports are byte-stable for identical inputs: category counts sort by
// descending count then label, and every key or column list sorts by its
// canonical form. No wall-clock time, no randomness, no map-order leakage.
package validator
