package importer

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// CreateWithRetry attempts to create one record, shedding invalid properties
// one at a time until the create succeeds or no recoverable failure remains.
//
// Each failed attempt is inspected for the name of the rejected property
// (the CRM identifies at most one bad field per response). When a name is
// found, is still present, and more than one property remains, that property
// is removed and the create retried; properties are only ever removed, never
// added. Attempts are bounded at len(props)+1 so a create that keeps
// rejecting fields cannot loop forever. The returned outcome has no row
// number; the caller attributes it.
func CreateWithRetry(ctx context.Context, create CreateFunc, props map[string]string) RowOutcome {
	remaining := make(map[string]string, len(props))
	for k, v := range props {
		remaining[k] = v
	}
	var skipped []string

	attempts := len(props) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		id, err := create(ctx, remaining)
		if err == nil {
			if len(skipped) > 0 {
				return RowOutcome{Status: StatusWarning, ID: id, SkippedFields: skipped}
			}
			return RowOutcome{Status: StatusCreated, ID: id}
		}

		bad := invalidProperty(err)
		if bad == "" {
			// Last resort: some validation errors name the property in
			// prose without any parseable structure.
			bad = propertyInMessage(errMessage(err), remaining)
		}
		if bad != "" && len(remaining) > 1 {
			if _, ok := remaining[bad]; ok {
				delete(remaining, bad)
				skipped = append(skipped, bad)
				continue
			}
		}
		return RowOutcome{Status: StatusFailed, Err: errMessage(err)}
	}
	return RowOutcome{Status: StatusFailed, Err: "Exceeded property-removal retries"}
}

func errMessage(err error) string {
	if err == nil {
		return "Create failed"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Create failed"
}

// bodyCarrier is satisfied by errors that retain the raw API response body
// (see hubspot.APIError). Extraction stays decoupled from any one client.
type bodyCarrier interface {
	ResponseBody() []byte
}

// jsonArray matches the JSON array validation errors embed in their message
// text, e.g. `Property values were not valid: [{"name":"foo",...}]`.
var jsonArray = regexp.MustCompile(`(?s)\[.*\]`)

// invalidProperty extracts the name of the rejected property from a create
// failure, best-effort. It first looks for a JSON array literal in the error
// message and takes the first element's "name"; failing that it inspects a
// "validationResults" field on the response body. Returns "" when nothing
// can be extracted; it never panics and swallows all parse errors.
func invalidProperty(err error) string {
	if err == nil {
		return ""
	}

	if name := nameFromArrayText(err.Error()); name != "" {
		return name
	}

	carrier, ok := err.(bodyCarrier)
	if !ok {
		return ""
	}
	body := carrier.ResponseBody()
	if len(body) == 0 {
		return ""
	}

	// The message inside the body may carry the array even when the
	// top-level error text did not.
	var parsed struct {
		Message           string          `json:"message"`
		ValidationResults json.RawMessage `json:"validationResults"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if name := nameFromArrayText(parsed.Message); name != "" {
		return name
	}
	return nameFromValidationResults(parsed.ValidationResults)
}

// propertyInMessage scans the remaining property names for one mentioned
// verbatim in the error message. Longer names are tried first so a name that
// contains another ("phone_number" vs "phone") wins; ties break lexically.
func propertyInMessage(msg string, remaining map[string]string) string {
	if msg == "" {
		return ""
	}
	names := make([]string, 0, len(remaining))
	for k := range remaining {
		if k != "" {
			names = append(names, k)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		if strings.Contains(msg, name) {
			return name
		}
	}
	return ""
}

// nameFromArrayText finds an embedded JSON array in msg and returns the
// "name" of its first element, or "".
func nameFromArrayText(msg string) string {
	match := jsonArray.FindString(msg)
	if match == "" {
		return ""
	}
	var items []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(match), &items); err != nil {
		return ""
	}
	if len(items) == 0 {
		return ""
	}
	return items[0].Name
}

// nameFromValidationResults handles both shapes HubSpot has used: an array
// of {name: ...} entries, or an object keyed by property name (in which case
// the lexically first key is taken for determinism).
func nameFromValidationResults(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &entries); err == nil {
		if len(entries) > 0 {
			return entries[0].Name
		}
		return ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return ""
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}
