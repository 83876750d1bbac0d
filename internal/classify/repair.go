package classify

import (
	"encoding/json"
	"regexp"
	"strings"
)

// label is the object the model is instructed to return.
type label struct {
	Category    string `json:"category"`
	SubCategory string `json:"subcategory"`
}

var (
	objectRe        = regexp.MustCompile(`(?s)\{.*?\}`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// recoverLabel pulls the first {...} region out of the model's reply
// and runs an ordered sequence of parse attempts over it:
//
//  1. strict JSON
//  2. trailing commas before closing brackets stripped
//  3. single quotes normalized to double quotes
//
// Each attempt either succeeds or falls through; an unrecoverable
// reply reports failure instead of erroring out.
func recoverLabel(text string) (label, bool) {
	region := objectRe.FindString(text)
	if region == "" {
		return label{}, false
	}

	attempts := []string{
		region,
		stripTrailingCommas(region),
		normalizeQuotes(stripTrailingCommas(region)),
	}

	for _, candidate := range attempts {
		var l label
		if err := json.Unmarshal([]byte(candidate), &l); err == nil {
			return l, true
		}
	}
	return label{}, false
}

func stripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

func normalizeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}
