package rewrite

import (
	"regexp"
)

// withOpacityRegex matches `receiver.withOpacity(number)`.
//
// Group 1 is the receiver: one or more word characters, optionally followed
// by `.word` segments (lazy). Group 2 is the numeric literal: digits,
// optionally a dot and more digits. A leading-dot literal such as `.5` is
// not matched.
var withOpacityRegex = regexp.MustCompile(
	`([\p{L}\p{N}_]+(?:\.[\p{L}\p{N}_]+)*?)` +
		`\.withOpacity\(` +
		`(\p{Nd}+\.?\p{Nd}*)` +
		`\)`)

const replacement = `${1}.withValues(alpha: ${2})`

// Rewrite replaces every `X.withOpacity(N)` in src with
// `X.withValues(alpha: N)` and returns the new text and the number of
// replacements made. src is returned unchanged when nothing matched.
func Rewrite(src []byte) ([]byte, int) {
	count := len(withOpacityRegex.FindAllIndex(src, -1))
	if count == 0 {
		return src, 0
	}
	return withOpacityRegex.ReplaceAll(src, []byte(replacement)), count
}

// RewriteString is Rewrite for strings.
func RewriteString(src string) (string, int) {
	out, n := Rewrite([]byte(src))
	return string(out), n
}

// Matches reports the matched call expressions in src, in order.
func Matches(src []byte) []string {
	found := withOpacityRegex.FindAll(src, -1)
	matches := make([]string, len(found))
	for i, m := range found {
		matches[i] = string(m)
	}
	return matches
}
