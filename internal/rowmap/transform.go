package rowmap

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// callOutcomes expands the shorthand codes sales reps type into the
// canonical CRM option values. Unrecognized codes pass through unchanged.
var callOutcomes = map[string]string{
	"NA":    "no_answer",
	"NI":    "not-interested",
	"HU":    "hung_up",
	"WASTE": "waste",
	"DUPE":  "dupe",
	"IN":    "invalid_number",
	"OP":    "op",
	"FU":    "follow_up",
	"TMW":   "too_much_work",
	"DNC":   "do_not_call",
}

// NormalizeOutcome maps a call-outcome shorthand to its canonical value.
// Codes are matched case-insensitively after trimming; anything starting
// with "OP" (reps often append detail, e.g. "OP - callback") collapses to
// the literal "op". Unknown codes are returned as-is.
func NormalizeOutcome(v string) string {
	upper := strings.ToUpper(strings.TrimSpace(v))
	if strings.HasPrefix(upper, "OP") {
		return "op"
	}
	if mapped, ok := callOutcomes[upper]; ok {
		return mapped
	}
	return v
}

var (
	numericTimestamp = regexp.MustCompile(`^\d{10,13}$`)
	dateSeparators   = regexp.MustCompile(`[.\-\s]+`)
	dayMonthYear     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	yearMonthDay     = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
)

// fallbackLayouts is the best-effort tail of date parsing, tried in order
// against the cleaned (not separator-normalized) input.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Jan 2 2006",
}

// DateToUTCMillis normalizes a date-like cell to the string form of epoch
// milliseconds at UTC midnight. Accepted inputs, in order:
//
//  1. A bare 10-13 digit timestamp (seconds or milliseconds, disambiguated
//     by magnitude), truncated to its UTC midnight.
//  2. Day-first D/M/YYYY after normalizing '.', '-' and spaces to '/'
//     (two-digit years read as 20YY).
//  3. ISO-like YYYY/M/D with the same separator normalization.
//  4. A short list of common textual layouts.
//
// Anything unparseable is returned unchanged; this function never fails.
func DateToUTCMillis(v string) string {
	if v == "" {
		return v
	}
	cleaned := strings.TrimRight(strings.TrimSpace(v), ". \t")

	if numericTimestamp.MatchString(cleaned) {
		ts, err := strconv.ParseInt(cleaned, 10, 64)
		if err == nil {
			if ts <= 9999999999 {
				ts *= 1000
			}
			return millisAtMidnight(time.UnixMilli(ts).UTC())
		}
	}

	normalized := dateSeparators.ReplaceAllString(cleaned, "/")
	if m := dayMonthYear.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	if m := yearMonthDay.FindStringSubmatch(normalized); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return strconv.FormatInt(t.UnixMilli(), 10)
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return millisAtMidnight(t.UTC())
		}
	}
	return v
}

// millisAtMidnight truncates t to 00:00:00 UTC and formats epoch millis.
func millisAtMidnight(t time.Time) string {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return strconv.FormatInt(midnight.UnixMilli(), 10)
}
