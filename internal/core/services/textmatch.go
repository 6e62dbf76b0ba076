package services

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/unicode/norm"
)

var (
	parenthesised = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	numberRun     = regexp.MustCompile(`\d+(?:\.\d+)?`)
	alnumRun      = regexp.MustCompile(`[A-Za-z0-9]+`)
)

// normalizeText folds OCR text into the form every comparison uses:
// NFC composed, lower-cased, with control characters turned into spaces.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, s)
	return strings.TrimSpace(s)
}

// cleanName strips bracketed qualifiers and collapses whitespace.
func cleanName(name string) string {
	name = parenthesised.ReplaceAllString(normalizeText(name), " ")
	return strings.Join(strings.Fields(name), " ")
}

// baseName is the stem of a cleaned name: the part before the first space,
// cut again before a dose number when enough of a name precedes it.
func baseName(cleaned string) string {
	stem := cleaned
	if i := strings.IndexByte(stem, ' '); i >= 0 {
		stem = stem[:i]
	}
	runes := []rune(stem)
	for i, r := range runes {
		if unicode.IsDigit(r) {
			if i >= 2 {
				return string(runes[:i])
			}
			break
		}
	}
	return stem
}

// compact removes all whitespace so spacing differences in OCR output do not
// defeat containment checks.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// containsName reports whether needle occurs in the text, with or without spaces.
func containsName(text, needle string) bool {
	if needle == "" {
		return false
	}
	if strings.Contains(text, needle) {
		return true
	}
	c := compact(needle)
	return c != "" && strings.Contains(compact(text), c)
}

// numbers returns the set of numeric substrings in s.
func numbers(s string) map[string]struct{} {
	found := numberRun.FindAllString(s, -1)
	set := make(map[string]struct{}, len(found))
	for _, n := range found {
		set[n] = struct{}{}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

// tokens splits normalised text on whitespace, keeping tokens of at least
// minLen runes.
func tokens(text string, minLen int) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if runeLen(f) >= minLen {
			out = append(out, f)
		}
	}
	return out
}

// alnumRuns returns ASCII alphanumeric substrings of at least minLen characters.
func alnumRuns(text string, minLen int) []string {
	var out []string
	for _, run := range alnumRun.FindAllString(text, -1) {
		if len(run) >= minLen {
			out = append(out, run)
		}
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}

// similarity is the normalised Indel similarity of a and b:
// 2*LCS / (len(a) + len(b)), counted in runes.
func similarity(a, b string) float64 {
	total := runeLen(a) + runeLen(b)
	if total == 0 {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return 2 * float64(edlib.LCS(a, b)) / float64(total)
}

// bestSimilarity returns the highest similarity between any token and target.
func bestSimilarity(toks []string, target string) float64 {
	best := 0.0
	for _, tok := range toks {
		if s := similarity(tok, target); s > best {
			best = s
		}
	}
	return best
}
