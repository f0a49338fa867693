package catalogs

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	folder      = cases.Fold()
	wirCodeRe   = regexp.MustCompile(`^WIR-([1-9][0-9]{0,3})$`)
	stagePrefix = regexp.MustCompile(`^\s*(?i:WIR)\s*-\s*([0-9]+)\s*[:\-–]\s*`)
)

// NormalizeName returns the comparison form of a display name: NFKC
// normalized, whitespace collapsed and case folded.
func NormalizeName(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return folder.String(s)
}

// NormalizeCode returns the comparison form of a short code such as a WIR
// code or an item number: trimmed, inner spaces removed, upper-cased.
func NormalizeCode(s string) string {
	s = norm.NFKC.String(s)
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// IsWIRCode reports whether s is a well-formed WIR short code.
func IsWIRCode(s string) bool {
	return wirCodeRe.MatchString(NormalizeCode(s))
}

// StageNumber returns n for a code of the form WIR-n.
func StageNumber(code string) (int, bool) {
	m := wirCodeRe.FindStringSubmatch(NormalizeCode(code))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// StagePrefix returns the WIR code encoded as a "WIR-n:" prefix of a
// category name, or "" when the name carries none.
func StagePrefix(name string) string {
	m := stagePrefix.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	return "WIR-" + strconv.Itoa(n)
}

// StripStagePrefix removes a leading "WIR-n:" prefix from a category name.
func StripStagePrefix(name string) string {
	loc := stagePrefix.FindStringIndex(name)
	if loc == nil {
		return name
	}
	return name[loc[1]:]
}
