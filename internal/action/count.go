package action

import (
	"fmt"
	"sort"

	"github.com/adarchive/adlib/internal/domain"
)

// printCount writes the total record count, with a per-term breakdown
// when more than one term contributed.
func printCount(records domain.Aggregate, env Env) error {
	fmt.Fprintf(env.Stdout, "Count: %d\n", len(records))

	counts := records.CountByTerm()
	if len(counts) <= 1 {
		return nil
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	for _, term := range terms {
		label := term
		if label == "" {
			label = "(no term)"
		}
		fmt.Fprintf(env.Stdout, "  %s: %d\n", label, counts[term])
	}
	return nil
}
