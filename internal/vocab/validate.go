// Package vocab validates user-supplied comma lists against the archive
// API's closed vocabularies (reachable countries, retrievable fields).
// Both validators collect every offending token before failing so a single
// correction cycle fixes the whole flag value.
package vocab

import (
	"strings"

	"github.com/adarchive/adlib/internal/domain"
)

// splitList splits a comma list, trims each token and drops empty ones.
func splitList(input string) []string {
	var tokens []string
	for _, tok := range strings.Split(input, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// CountryCodes validates a comma list of country names or codes and
// returns the normalized codes in input order, duplicates preserved.
func CountryCodes(input string) ([]string, error) {
	tokens := splitList(input)
	if len(tokens) == 0 {
		return nil, domain.ErrEmptyInput("country")
	}

	codes := make([]string, 0, len(tokens))
	var invalid []string
	for _, tok := range tokens {
		code := CountryCode(tok)
		if code == "" {
			invalid = append(invalid, tok)
			continue
		}
		codes = append(codes, code)
	}
	if len(invalid) > 0 {
		return nil, domain.ErrInvalidCountryCodes(invalid)
	}
	return codes, nil
}

// Fields validates a comma list of archive field names and returns the
// trimmed names in input order. Duplicates are kept as given; the API
// tolerates them and deduplicating here would surprise round-tripping.
func Fields(input string) ([]string, error) {
	tokens := splitList(input)
	if len(tokens) == 0 {
		return nil, domain.ErrEmptyInput("fields")
	}

	var invalid []string
	for _, tok := range tokens {
		if !ValidField(tok) {
			invalid = append(invalid, tok)
		}
	}
	if len(invalid) > 0 {
		return nil, domain.ErrInvalidFields(invalid)
	}
	return tokens, nil
}
