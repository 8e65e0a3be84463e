package feed

import (
	"sort"
	"time"
)

// Timed is anything carrying a parsed feed timestamp. All normalized record
// types satisfy it through RecordMeta.
type Timed interface {
	When() (time.Time, bool)
}

// SortNewestFirst orders records by timestamp descending. Records with
// unparseable timestamps sort last, keeping their relative order.
func SortNewestFirst[T Timed](records []T) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, okI := records[i].When()
		tj, okJ := records[j].When()
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}

// Page slices out one page of records. Pages are 1-based; anything below 1
// clamps to 1, and a page past the end yields an empty slice rather than an
// error, since an empty page is a valid displayable state.
func Page[T any](records []T, page, size int) []T {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = CardPageSize
	}
	start := (page - 1) * size
	if start >= len(records) {
		return []T{}
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// PageCount returns how many pages of the given size the records fill.
func PageCount(total, size int) int {
	if size < 1 {
		size = CardPageSize
	}
	if total == 0 {
		return 0
	}
	return (total + size - 1) / size
}
