package policy

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// regexSigil matches the pattern-grammar boundary from spec §4.1/§6:
// an optional leading "!", a leading "/", arbitrary body, a trailing
// "/", and an optional trailing "i" flag.
var regexSigil = regexp.MustCompile(`^!?/.*/(i)?$`)

// Pattern is a compiled glob or regex pattern, classified once at
// construction time per spec §4.1.
//
// The leading "!" accepted by the regex sigil is stripped and ignored:
// the source design does not implement negation for it (see spec §9,
// an open question this implementation resolves by treating "!" as
// reserved-and-ignored rather than inventing negation semantics).
type Pattern struct {
	raw   string
	re    *regexp.Regexp
	glob  glob.Glob
	isRe  bool
}

// Compile classifies and compiles a pattern. Compilation failure is a
// fatal configuration error, never a silent no-match.
func Compile(raw string) (*Pattern, error) {
	if regexSigil.MatchString(raw) {
		return compileRegexPattern(raw)
	}
	return compileGlobPattern(raw)
}

func compileRegexPattern(raw string) (*Pattern, error) {
	body := raw
	body = strings.TrimPrefix(body, "!")
	body = strings.TrimPrefix(body, "/")

	caseInsensitive := false
	if strings.HasSuffix(body, "/i") {
		caseInsensitive = true
		body = strings.TrimSuffix(body, "/i")
	} else {
		body = strings.TrimSuffix(body, "/")
	}

	if caseInsensitive {
		body = "(?i)" + body
	}

	re, err := regexp.Compile(body)
	if err != nil {
		return nil, wrapConfigError("invalid regex pattern "+quote(raw), err)
	}
	return &Pattern{raw: raw, re: re, isRe: true}, nil
}

func compileGlobPattern(raw string) (*Pattern, error) {
	// Emulate matchBase=true (a slash-free pattern matches against the
	// basename of the candidate text) and partial matching anywhere in
	// the input by wrapping the pattern in unanchored wildcards; the
	// basename reduction itself happens at match time in Matches,
	// since it depends on the candidate text, not the pattern.
	wrapped := "*" + raw + "*"
	g, err := glob.Compile(wrapped)
	if err != nil {
		return nil, wrapConfigError("invalid glob pattern "+quote(raw), err)
	}
	return &Pattern{raw: raw, glob: g, isRe: false}, nil
}

// Matches reports whether the pattern matches the given text. Empty
// text never matches a non-empty pattern.
func (p *Pattern) Matches(text string) bool {
	if text == "" {
		return false
	}
	if p.isRe {
		return p.re.MatchString(text)
	}

	candidate := text
	if !strings.Contains(p.raw, "/") {
		if idx := strings.LastIndex(text, "/"); idx >= 0 {
			candidate = text[idx+1:]
		}
	}
	return p.glob.Match(candidate)
}

func quote(s string) string {
	return "\"" + s + "\""
}
