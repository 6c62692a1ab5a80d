// Package rowmap translates raw spreadsheet rows into CRM property sets.
//
// A Row is one line of an uploaded CSV or one row read from a Google Sheet:
// column label -> raw cell text. The Mapper applies a fixed column dictionary
// (label -> target property name) plus a small set of value transforms (call
// outcome codes, outreach dates) to produce the property set that is sent to
// the CRM create endpoints.
//
// Mapping is deliberately lenient: unknown columns are dropped, empty cells
// are omitted entirely (never set to ""), and values that fail to transform
// pass through unchanged. One bad cell must never abort a whole row.
package rowmap

import "strings"

// Row is one raw input record: column label -> raw string value.
type Row map[string]string

// Properties is the target property set for one record to be created:
// property name -> string value.
type Properties map[string]string

// ignore marks a dictionary column that is recognized but intentionally
// not imported.
const ignore = ""

// DefaultColumns is the column dictionary used by the bulk importers. Keys
// are lower-cased, trimmed column labels; values are CRM property names.
// Columns mapped to ignore are recognized but dropped.
var DefaultColumns = map[string]string{
	"slug":                 ignore,
	"url":                  "website",
	"website?":             "website",
	"page":                 "facebook_company_page",
	"ads":                  "facebook_ads_library",
	"rep":                  "last_sales_outreach_by",
	"date":                 "last_sales_outreach_date",
	"number":               "phone",
	"number2":              "alternate_phone_number",
	"number 2":             "alternate_phone_number",
	"format":               "phone_number_format",
	"notes":                "last_sales_call_outcome",
	"email":                "email",
	"email format":         "email_format",
	"business":             "name",
	"category":             "industry1",
	"state":                "state",
	"city":                 "city",
	"postcode":             "zip",
	"apes":                 "pces",
	"pces":                 "pces",
	"rural flag":           "rural_indicator",
	"rural?":               "rural_indicator",
	"scraped date":         ignore,
	"scraped":              ignore,
	"follower count":       "facebook_followers",
	"follower":             "facebook_followers",
	"probability":          "probability",
	"probability answered": ignore,
}

// Mapper maps Rows to Properties using a column dictionary. The zero value
// is not usable; construct with NewMapper.
type Mapper struct {
	columns map[string]string
}

// NewMapper returns a Mapper over the given dictionary. Passing nil uses
// DefaultColumns.
func NewMapper(columns map[string]string) *Mapper {
	if columns == nil {
		columns = DefaultColumns
	}
	return &Mapper{columns: columns}
}

// Map converts one raw row into a property set. Columns are visited in
// header order so that duplicate targets resolve deterministically (last
// column wins). Headers missing from the row, empty cells, and columns not
// present in the dictionary are skipped. Map is pure: the same inputs always
// yield the same Properties and the inputs are never mutated.
func (m *Mapper) Map(headers []string, row Row) Properties {
	props := make(Properties, len(row))
	for _, h := range headers {
		v, ok := row[h]
		if !ok || v == "" {
			continue
		}
		target, ok := m.columns[strings.ToLower(strings.TrimSpace(FoldHeader(h)))]
		if !ok || target == ignore {
			continue
		}
		props[target] = v
	}
	return Transform(props)
}

// Transform applies the value transforms in place and returns props for
// chaining. Call outcomes are normalized through the code table; outreach
// dates are converted to epoch-millisecond strings at UTC midnight.
func Transform(props Properties) Properties {
	if v, ok := props["last_sales_call_outcome"]; ok {
		props["last_sales_call_outcome"] = NormalizeOutcome(v)
	}
	if v, ok := props["last_sales_outreach_date"]; ok {
		props["last_sales_outreach_date"] = DateToUTCMillis(v)
	}
	return props
}
