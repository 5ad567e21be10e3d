// Package query assembles the per-invocation query configuration from
// already-validated CLI inputs.
package query

import (
	"strings"

	"github.com/adarchive/adlib/internal/domain"
)

// Config is the immutable query configuration for one invocation. It is
// built once by New and read-only afterwards; every layer below receives
// it by pointer and never mutates it.
type Config struct {
	// AccessToken is the opaque API credential, forwarded verbatim.
	AccessToken string

	// Fields is the validated field list, prefixed with the mandatory
	// search_term field.
	Fields []string

	// Countries is the validated, normalized country code list.
	Countries []string

	// SearchTerms are the raw comma-split terms. When none were supplied
	// it holds the single empty term, which the API treats as "no term
	// filter".
	SearchTerms []string

	// PageIDs, ActiveStatus and AfterDate are opaque pass-through filters
	// owned by the traversal layer.
	PageIDs      string
	ActiveStatus string
	AfterDate    string

	// BatchSize is the page size per API call, always > 0.
	BatchSize int

	// RetryLimit is the per-page retry budget, always >= 0.
	RetryLimit int

	Verbose bool
}

// Params carries the parsed CLI primitives into New. Fields and Countries
// must already have passed vocab validation; New only aggregates and
// enforces the one cross-field rule.
type Params struct {
	AccessToken  string
	Fields       []string
	Countries    []string
	SearchTerms  string
	PageIDs      string
	ActiveStatus string
	AfterDate    string
	BatchSize    int
	RetryLimit   int
	Verbose      bool
}

// New builds the query configuration. It fails when neither search terms
// nor page ids scope the query; an unscoped query would sweep the whole
// archive.
func New(p Params) (*Config, error) {
	if p.SearchTerms == "" && p.PageIDs == "" {
		return nil, &domain.MissingSelectorError{}
	}

	terms := []string{""}
	if p.SearchTerms != "" {
		terms = strings.Split(p.SearchTerms, ",")
	}

	return &Config{
		AccessToken:  p.AccessToken,
		Fields:       append([]string{domain.SearchTermField}, p.Fields...),
		Countries:    p.Countries,
		SearchTerms:  terms,
		PageIDs:      p.PageIDs,
		ActiveStatus: p.ActiveStatus,
		AfterDate:    p.AfterDate,
		BatchSize:    p.BatchSize,
		RetryLimit:   p.RetryLimit,
		Verbose:      p.Verbose,
	}, nil
}

// FieldSpec returns the comma-joined field list as sent to the API and as
// used by the CSV action to derive its column headers.
func (c *Config) FieldSpec() string {
	return strings.Join(c.Fields, ",")
}
