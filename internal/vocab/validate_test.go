package vocab

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/adarchive/adlib/internal/domain"
)

func TestCountryCodes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "codes pass through uppercased",
			input: "us,de",
			want:  []string{"US", "DE"},
		},
		{
			name:  "UK alias and duplicates preserved in input order",
			input: "UK, us, uk",
			want:  []string{"GB", "US", "GB"},
		},
		{
			name:  "full names resolve case-insensitively",
			input: "united states,Germany",
			want:  []string{"US", "DE"},
		},
		{
			name:  "surrounding blanks and empty tokens dropped",
			input: " US ,, GB ,",
			want:  []string{"US", "GB"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountryCodes(tt.input)
			if err != nil {
				t.Fatalf("CountryCodes(%q) error = %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CountryCodes(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCountryCodesAllInvalidTokensReported(t *testing.T) {
	_, err := CountryCodes("US,ZZ,YY")
	if err == nil {
		t.Fatal("expected error for unknown country tokens")
	}

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	if vErr.Kind != domain.ValidationInvalidCountryCodes {
		t.Errorf("expected kind %q, got %q", domain.ValidationInvalidCountryCodes, vErr.Kind)
	}
	if !reflect.DeepEqual(vErr.Tokens, []string{"ZZ", "YY"}) {
		t.Errorf("expected both offending tokens in order, got %v", vErr.Tokens)
	}
	for _, tok := range []string{"ZZ", "YY"} {
		if !strings.Contains(err.Error(), tok) {
			t.Errorf("error message %q does not mention %q", err.Error(), tok)
		}
	}
}

func TestCountryCodesEmptyInput(t *testing.T) {
	for _, input := range []string{"", " , ,", ","} {
		if _, err := CountryCodes(input); err == nil {
			t.Errorf("CountryCodes(%q) expected error", input)
		} else {
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) || vErr.Kind != domain.ValidationEmptyInput {
				t.Errorf("CountryCodes(%q) expected EmptyInput, got %v", input, err)
			}
		}
	}
}

func TestFields(t *testing.T) {
	got, err := Fields(" page_id , ad_creative_bodies,page_id")
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	// Trimmed, order-preserving, duplicates kept.
	want := []string{"page_id", "ad_creative_bodies", "page_id"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestFieldsAllInvalidTokensReported(t *testing.T) {
	_, err := Fields("page_id,bogus,also_bogus")
	if err == nil {
		t.Fatal("expected error for unknown fields")
	}

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	if vErr.Kind != domain.ValidationInvalidFields {
		t.Errorf("expected kind %q, got %q", domain.ValidationInvalidFields, vErr.Kind)
	}
	if !reflect.DeepEqual(vErr.Tokens, []string{"bogus", "also_bogus"}) {
		t.Errorf("expected both offending tokens in order, got %v", vErr.Tokens)
	}
}

func TestFieldsEmptyInput(t *testing.T) {
	for _, input := range []string{"", " , ,"} {
		_, err := Fields(input)
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) || vErr.Kind != domain.ValidationEmptyInput {
			t.Errorf("Fields(%q) expected EmptyInput, got %v", input, err)
		}
	}
}
