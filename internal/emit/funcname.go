package emit

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// FuncMatcher reports whether line looks like the start of a definition (function, type, section...) and, if so, the text to show in a
// hunk header. line includes its trailing newline, if any.
type FuncMatcher func(line []byte) (string, bool)

// DefaultFuncMatcher matches lines that begin with a letter, '_' or '$', returning the line with trailing whitespace removed.
func DefaultFuncMatcher(line []byte) (string, bool) {
	if len(line) == 0 {
		return "", false
	}
	c := line[0]
	if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$') {
		return "", false
	}
	return strings.TrimRight(string(line), " \t\r\n\v\f"), true
}

// builtinFuncPatterns are funcname patterns for common languages, in NewRegexpFuncMatcher syntax.
var builtinFuncPatterns = map[string]string{
	"golang": "^[ \t]*(func[ \t]*.*(\\{[ \t]*)?)\n" +
		"^[ \t]*(type[ \t].*(struct|interface)[ \t]*(\\{[ \t]*)?)",
	"python": "^[ \t]*((class|(async[ \t]+)?def)[ \t].*)$",
	"cpp": "!^[ \t]*[A-Za-z_][A-Za-z_0-9]*:\\s*($|/[/*])\n" +
		"^((::\\s*)?[A-Za-z_].*)$",
	"rust": "^[\t ]*((pub(\\([^\\)]+\\))?[\t ]+)?((async|const|unsafe|extern([\t ]+\"[^\"]+\"))[\t ]+)?(struct|enum|union|mod|trait|fn|impl|macro_rules!)[< \t]+[^;]*)$",
}

// BuiltinFuncPattern returns the funcname pattern for a language name ("golang", "python", "cpp", "rust").
func BuiltinFuncPattern(lang string) (string, bool) {
	p, ok := builtinFuncPatterns[lang]
	return p, ok
}

type funcRegexp struct {
	re     *regexp2.Regexp
	negate bool
}

// NewRegexpFuncMatcher compiles newline-separated patterns into a FuncMatcher. Patterns are tried in order against the line without its line
// terminator; the first one that matches decides. A pattern prefixed with '!' rejects the line when it matches. For an accepting pattern,
// the first capture group (or the whole match if there is none) is the function text. The last pattern must not be negated.
func NewRegexpFuncMatcher(patterns string, ignoreCase bool) (FuncMatcher, error) {
	var opts regexp2.RegexOptions = regexp2.Multiline
	if ignoreCase {
		opts |= regexp2.IgnoreCase
	}

	exprs := strings.Split(patterns, "\n")
	regs := make([]funcRegexp, 0, len(exprs))
	for i, expr := range exprs {
		negate := strings.HasPrefix(expr, "!")
		if negate {
			if i == len(exprs)-1 {
				return nil, fmt.Errorf("last funcname expression must not be negated: %q", expr)
			}
			expr = expr[1:]
		}
		re, err := regexp2.Compile(expr, opts)
		if err != nil {
			return nil, fmt.Errorf("invalid funcname regexp %q: %w", expr, err)
		}
		regs = append(regs, funcRegexp{re: re, negate: negate})
	}

	return func(line []byte) (string, bool) {
		s := strings.TrimSuffix(strings.TrimSuffix(string(line), "\n"), "\r")
		for _, r := range regs {
			m, err := r.re.FindStringMatch(s)
			if err != nil || m == nil {
				continue
			}
			if r.negate {
				return "", false
			}
			text := m.String()
			if groups := m.Groups(); len(groups) > 1 && len(groups[1].Captures) > 0 {
				text = groups[1].String()
			}
			return strings.TrimRight(text, " \t\r\n\v\f"), true
		}
		return "", false
	}, nil
}
