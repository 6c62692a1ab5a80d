// Tests for row-to-property mapping, focusing on:
//   - Dictionary lookup with case, whitespace, BOM, and accent tolerance.
//   - Omission rules: empty cells, unknown columns, ignored columns.
//   - Deterministic last-column-wins on target collisions.
//   - Purity: inputs are never mutated.

package rowmap

import (
	"reflect"
	"strconv"
	"testing"
	"time"
)

// TestMap_Basic verifies the canonical mapping of a contact row, including
// the outcome code and camel-case header tolerance.
func TestMap_Basic(t *testing.T) {
	t.Parallel()

	headers := []string{"Business", "Number", "Notes", "Slug", "Unknown Column"}
	row := Row{
		"Business":       "Acme",
		"Number":         "555-1234",
		"Notes":          "NA",
		"Slug":           "acme-co",
		"Unknown Column": "whatever",
	}

	m := NewMapper(nil)
	got := m.Map(headers, row)
	want := Properties{
		"name":                    "Acme",
		"phone":                   "555-1234",
		"last_sales_call_outcome": "no_answer",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestMap_EmptyCellsOmitted verifies empty cells never become "" properties.
func TestMap_EmptyCellsOmitted(t *testing.T) {
	t.Parallel()

	headers := []string{"Business", "Email"}
	row := Row{"Business": "Acme", "Email": ""}

	got := NewMapper(nil).Map(headers, row)
	if _, ok := got["email"]; ok {
		t.Fatalf("empty cell mapped: %v", got)
	}
	if got["name"] != "Acme" {
		t.Fatalf("expected name Acme, got %v", got)
	}
}

// TestMap_LastColumnWins verifies duplicate targets resolve to the
// rightmost column.
func TestMap_LastColumnWins(t *testing.T) {
	t.Parallel()

	// Both "url" and "website?" target the website property.
	headers := []string{"URL", "Website?"}
	row := Row{"URL": "http://old.example.com", "Website?": "http://new.example.com"}

	got := NewMapper(nil).Map(headers, row)
	if got["website"] != "http://new.example.com" {
		t.Fatalf("expected last column to win, got %q", got["website"])
	}
}

// TestMap_HeaderNormalization verifies lookups survive BOMs, surrounding
// whitespace, case, and diacritics.
func TestMap_HeaderNormalization(t *testing.T) {
	t.Parallel()

	headers := []string{"\uFEFFBusiness", "  NUMBER  ", "Catégory"}
	row := Row{
		"\uFEFFBusiness": "Acme",
		"  NUMBER  ":     "555",
		"Catégory":       "plumbing",
	}

	got := NewMapper(nil).Map(headers, row)
	if got["name"] != "Acme" || got["phone"] != "555" || got["industry1"] != "plumbing" {
		t.Fatalf("normalization failed: %v", got)
	}
}

// TestMap_Pure verifies the input row is left untouched and repeated calls
// agree.
func TestMap_Pure(t *testing.T) {
	t.Parallel()

	headers := []string{"Business", "Notes"}
	row := Row{"Business": "Acme", "Notes": "ni"}
	before := Row{"Business": "Acme", "Notes": "ni"}

	m := NewMapper(nil)
	first := m.Map(headers, row)
	second := m.Map(headers, row)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("calls disagree: %v vs %v", first, second)
	}
	if !reflect.DeepEqual(row, before) {
		t.Fatalf("input mutated: %v", row)
	}
}

// TestMap_DateTransform verifies the outreach date column comes out as
// epoch milliseconds at UTC midnight.
func TestMap_DateTransform(t *testing.T) {
	t.Parallel()

	headers := []string{"Business", "Date"}
	row := Row{"Business": "Acme", "Date": "5.3.24"}

	got := NewMapper(nil).Map(headers, row)
	want := strconv.FormatInt(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC).UnixMilli(), 10)
	if got["last_sales_outreach_date"] != want {
		t.Fatalf("expected %s, got %s", want, got["last_sales_outreach_date"])
	}
}

// TestNewMapper_CustomDictionary verifies custom dictionaries replace the
// default one entirely.
func TestNewMapper_CustomDictionary(t *testing.T) {
	t.Parallel()

	m := NewMapper(map[string]string{"thing": "custom_property"})
	got := m.Map([]string{"Thing", "Business"}, Row{"Thing": "x", "Business": "Acme"})
	if got["custom_property"] != "x" {
		t.Fatalf("custom mapping missed: %v", got)
	}
	if _, ok := got["name"]; ok {
		t.Fatalf("default dictionary leaked into custom mapper: %v", got)
	}
}
