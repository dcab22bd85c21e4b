package emit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedHunkHeader is wrapped by every error ParseHunkHeader returns.
var ErrMalformedHunkHeader = errors.New("malformed hunk header")

// HunkHeader describes one hunk. Starts are 1-based line numbers of the first line in the range; for an empty range, the start is the line
// the range would begin at (one past the line it follows).
type HunkHeader struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Func               string // enclosing function line, or ""
}

// String formats h as FormatHunkHeader does.
func (h HunkHeader) String() string {
	return FormatHunkHeader(h)
}

// FormatHunkHeader renders h in unified-diff form: "@@ -<start>[,<count>] +<start>[,<count>] @@[ <func>]". A count of 1 is omitted, and an
// empty range is written as the line it follows with a count of 0, as patch tools expect.
func FormatHunkHeader(h HunkHeader) string {
	var b strings.Builder
	b.WriteString("@@ -")
	writeRange(&b, h.OldStart, h.OldCount)
	b.WriteString(" +")
	writeRange(&b, h.NewStart, h.NewCount)
	b.WriteString(" @@")
	if h.Func != "" {
		b.WriteByte(' ')
		b.WriteString(h.Func)
	}
	return b.String()
}

// writeRange writes one side of a hunk range in the unified-diff convention shared by GNU diff and git: a count of 1 is omitted, and an empty
// range is written as the line before it with ",0" (ex: "-0,0" for an insertion at the top of the file).
func writeRange(b *strings.Builder, start, count int) {
	if count == 0 {
		start--
	}
	b.WriteString(strconv.Itoa(start))
	if count != 1 {
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(count))
	}
}

// ParseHunkHeader parses a line produced by FormatHunkHeader (a trailing newline is allowed). A range without a count has count 1.
func ParseHunkHeader(line string) (HunkHeader, error) {
	orig := line
	fail := func(reason string) (HunkHeader, error) {
		return HunkHeader{}, fmt.Errorf("%w: %s: %q", ErrMalformedHunkHeader, reason, orig)
	}

	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	rest, ok := strings.CutPrefix(line, "@@ -")
	if !ok {
		return fail(`missing "@@ -" prefix`)
	}

	oldRange, rest, ok := strings.Cut(rest, " +")
	if !ok {
		return fail("missing new range")
	}
	newRange, rest, ok := strings.Cut(rest, " @@")
	if !ok {
		return fail(`missing closing "@@"`)
	}

	var h HunkHeader
	var err error
	if h.OldStart, h.OldCount, err = parseRange(oldRange); err != nil {
		return fail("old range: " + err.Error())
	}
	if h.NewStart, h.NewCount, err = parseRange(newRange); err != nil {
		return fail("new range: " + err.Error())
	}

	if rest != "" {
		fn, ok := strings.CutPrefix(rest, " ")
		if !ok {
			return fail(`text after "@@" must be separated by a space`)
		}
		h.Func = fn
	}
	return h, nil
}

func parseRange(s string) (start, count int, err error) {
	startStr, countStr, hasCount := strings.Cut(s, ",")
	start, err = parseNonNegative(startStr)
	if err != nil {
		return 0, 0, err
	}
	count = 1
	if hasCount {
		count, err = parseNonNegative(countStr)
		if err != nil {
			return 0, 0, err
		}
	}
	if count == 0 {
		start++
	} else if start == 0 {
		return 0, 0, errors.New("non-empty range starts at line 0")
	}
	return start, count, nil
}

func parseNonNegative(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing number")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid number %q", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}
