package loader

import "bytes"

// DefaultDelimiters lists the candidates in tie-break priority order.
var DefaultDelimiters = []rune{',', ';', '\t', '|'}

// SniffDelimiter returns the most frequent candidate in sample. Ties go to
// the earlier candidate; when no candidate occurs it returns ','.
func SniffDelimiter(sample []byte, candidates []rune) rune {
	if len(candidates) == 0 {
		candidates = DefaultDelimiters
	}
	best, bestN := ',', 0
	for _, c := range candidates {
		n := bytes.Count(sample, []byte(string(c)))
		if n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

// DelimiterName renders a delimiter for logs and metadata.
func DelimiterName(r rune) string {
	if r == '\t' {
		return "\\t"
	}
	return string(r)
}
