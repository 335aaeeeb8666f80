package form

import (
	"fmt"
	"strings"
	"time"
)

// canonicalDate is the storage and display format for all form dates.
const canonicalDate = "2006-01-02"

// ingressDateLayouts are the alternate spellings accepted from user input,
// tried in order after the canonical one.
var ingressDateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
}

// NormalizeDate converts a date to canonical YYYY-MM-DD form. The empty
// string passes through untouched; alternate DD.MM.YYYY input is converted;
// anything else is rejected.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if t, err := time.Parse(canonicalDate, value); err == nil {
		return t.Format(canonicalDate), nil
	}
	for _, layout := range ingressDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(canonicalDate), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q, expected YYYY-MM-DD or DD.MM.YYYY", value)
}
