// Package metricstore provides the read-through lookup and numeric
// coercion helpers shared by every consumer of a parsed table: find the
// right table, find the right column, coerce a cell to a number without
// ever panicking on a malformed one (spec.md §4.2).
package metricstore

import (
	"strconv"
	"strings"

	"github.com/dbaworks/awr-advisor/internal/awrmodel"
)

// Store is a read-through cache over a bundle's tables, keyed by table
// name, so repeated lookups during a single analysis pass don't re-walk
// the slice.
type Store struct {
	bundle *awrmodel.Bundle
	byName map[awrmodel.TableName]*awrmodel.Table
}

// New builds a Store over bundle, indexing its tables once.
func New(bundle *awrmodel.Bundle) *Store {
	s := &Store{bundle: bundle, byName: make(map[awrmodel.TableName]*awrmodel.Table, len(bundle.Tables))}
	for _, t := range bundle.Tables {
		s.byName[t.Name] = t
	}
	return s
}

// FindTable returns the table with the given name, or nil if absent.
func (s *Store) FindTable(name awrmodel.TableName) *awrmodel.Table {
	return s.byName[name]
}

// HasTable reports whether name is present in the bundle.
func (s *Store) HasTable(name awrmodel.TableName) bool {
	_, ok := s.byName[name]
	return ok
}

// FindColumn returns the index of the first candidate column present on t,
// trying candidates in order, or -1 if none match. Mirrors the Python
// convention of trying several historical header spellings for the same
// logical field (e.g. "elapsed_time_s" vs "elapsed__time_s").
func FindColumn(t *awrmodel.Table, candidates ...string) int {
	if t == nil {
		return -1
	}
	return t.ColumnIndex(candidates...)
}

// Cell returns the raw string cell at (row, col), or "" if out of bounds.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// CoerceFloat parses raw as a float64, stripping thousands separators and
// surrounding whitespace, returning 0 for anything unparseable rather than
// propagating an error — malformed numeric cells degrade to zero instead
// of aborting the whole metrics pass.
func CoerceFloat(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// CoerceInt parses raw as an int64 via CoerceFloat, truncating any
// fractional part. AWR exports frequently render integer counters with a
// trailing ".0".
func CoerceInt(raw string) int64 {
	return int64(CoerceFloat(raw))
}

// SumColumn sums CoerceFloat(cell) across every row of t at the given
// column index, skipping rows with no such column.
func SumColumn(t *awrmodel.Table, col int) float64 {
	if t == nil || col < 0 {
		return 0
	}
	var total float64
	for _, row := range t.Rows {
		total += CoerceFloat(Cell(row, col))
	}
	return total
}

// SumColumnCandidates finds the first present column among candidates and
// sums it, returning (0, false) if none of the candidates are present.
func SumColumnCandidates(t *awrmodel.Table, candidates ...string) (float64, bool) {
	col := FindColumn(t, candidates...)
	if col < 0 {
		return 0, false
	}
	return SumColumn(t, col), true
}
