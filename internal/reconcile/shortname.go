package reconcile

import (
	"regexp"
	"strings"
)

// utilityAbbrevs holds explicit permittee abbreviations that override the
// derived short name. Matched case-insensitively on the full permittee string.
var utilityAbbrevs = map[string]string{
	"baldwin county sewer service":      "BCSS",
	"baldwin county sewer service, llc": "BCSS",
	"city of daphne":                    "Daphne",
	"city of fairhope":                  "Fairhope",
	"city of spanish fort":              "Spanish Fort",
	"city of foley":                     "Foley",
	"city of robertsdale":               "Robertsdale",
}

var (
	acronymRe    = regexp.MustCompile(`\(([A-Z]{2,6})\)`)
	stripWordsRe = regexp.MustCompile(`(?i)\b(city|town|village|county|water\s+and\s+sewer\s+board|water\s+&\s*sewer\s+board|utilities?\s+board|utility\s+board|board|department|authority|of|the)\b`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// utilityShortName derives the short disambiguation tag for a permittee.
// Preference order: an explicit override, a parenthesized acronym in the name
// itself, then the name with municipal boilerplate stripped, trimmed to its
// last two words.
func utilityShortName(permittee string) string {
	p := strings.TrimSpace(permittee)
	if p == "" {
		return ""
	}
	if abbrev, ok := utilityAbbrevs[strings.ToLower(p)]; ok {
		return abbrev
	}
	if m := acronymRe.FindStringSubmatch(p); m != nil {
		return m[1]
	}

	core := strings.TrimSpace(stripWordsRe.ReplaceAllString(p, ""))
	core = multiSpaceRe.ReplaceAllString(core, " ")
	parts := strings.Fields(core)
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], " ")
	}
	if core == "" {
		return p
	}
	return core
}
