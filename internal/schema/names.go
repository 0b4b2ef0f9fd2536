package schema

import (
	"strings"
	"unicode"
)

// DefaultIDPatterns are matched against whole name tokens. Multi-word
// patterns match consecutive tokens.
func DefaultIDPatterns() []string {
	return []string{
		"id", "identifier", "uuid", "guid", "serial", "index",
		"sno", "s no", "userid", "patientid", "transactionid",
	}
}

// DefaultTargetPatterns are the label names checked before the positional
// fallbacks.
func DefaultTargetPatterns() []string {
	return []string{
		"target", "label", "class", "species", "outcome",
		"result", "y", "diagnosis", "churn",
	}
}

// tokens splits a column name into lowercase words on any non-alphanumeric
// rune and on lower-to-upper camelCase transitions. "PatientID" yields
// [patient id]; "Width" yields [width].
func tokens(name string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	rs := []rune(name)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) && len(cur) > 0 {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// matchName reports whether any pattern occurs as a whole-token run in name.
func matchName(name string, patterns []string) bool {
	toks := tokens(name)
	if len(toks) == 0 {
		return false
	}
	joined := " " + strings.Join(toks, " ") + " "
	for _, p := range patterns {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if strings.Contains(joined, " "+p+" ") {
			return true
		}
	}
	return false
}
