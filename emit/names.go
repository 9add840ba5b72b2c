package emit

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// sanitizeEntryName turns an arbitrary entry-point rule name (anything
// permitted by the JSON front-end, which may contain spaces, punctuation,
// or non-ASCII runes) into a valid exported Go identifier fragment suitable
// for splicing into "Generate<Name>Into"/"Generate<Name>New".
//
// The rule name's surrounding "<" ">" delimiters (and the "!" of a
// "<!module.rule>" builtin name, whose module and rule parts both stay as
// words) are stripped first, then each run of non-identifier runes is
// treated as a word boundary and title-cased, matching how the grammar
// author's own words, not the raw delimiter soup, should read in generated
// method names.
func sanitizeEntryName(ruleName string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(ruleName, "<"), ">")
	trimmed = strings.TrimPrefix(trimmed, "!")

	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	if len(words) == 0 {
		return "Unnamed"
	}

	var out strings.Builder
	for _, w := range words {
		out.WriteString(titleCaser.String(w))
	}
	ident := out.String()
	if ident == "" {
		return "Unnamed"
	}
	if unicode.IsDigit(rune(ident[0])) {
		ident = "N" + ident
	}
	return ident
}

// disambiguateNames appends a numeric suffix to any sanitized name that
// collides with an earlier one in the same entry-point list, since two
// rule names can sanitize to the same Go identifier (e.g. "<a-b>" and
// "<a_b>" both become "AB").
func disambiguateNames(names []string) []string {
	seen := make(map[string]int)
	out := make([]string, len(names))
	for i, n := range names {
		seen[n]++
		if seen[n] == 1 {
			out[i] = n
			continue
		}
		out[i] = n + strconv.Itoa(seen[n])
	}
	return out
}
