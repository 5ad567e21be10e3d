// Package domain holds the core types shared across the CLI: records as
// returned by the Ad Library archive, the aggregate built from them, and
// the canonical error values every layer reports through.
package domain

// SearchTermField is the synthetic field stamped onto every record with
// the search term that produced it. It is always the first column of any
// export, so the field spec a user supplies gets prefixed with it.
const SearchTermField = "search_term"

// Record is one archived ad as returned by the API: an opaque mapping of
// field name to value. The orchestrator adds the SearchTermField key after
// which the record is never mutated again.
type Record map[string]any

// SearchTerm returns the term this record was fetched under, or "" if the
// record has not been tagged yet (or was fetched without a term filter).
func (r Record) SearchTerm() string {
	s, _ := r[SearchTermField].(string)
	return s
}

// Aggregate is the ordered collection of records produced by one
// invocation: term submission order first, then batch arrival order, then
// within-batch order. Records matching several terms appear once per term.
type Aggregate []Record

// CountByTerm returns the number of records per originating search term.
func (a Aggregate) CountByTerm() map[string]int {
	counts := make(map[string]int)
	for _, r := range a {
		counts[r.SearchTerm()]++
	}
	return counts
}
