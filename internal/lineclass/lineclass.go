// Package lineclass splits text buffers into line records and assigns each line a dense equivalence-class id, so that later stages compare lines
// with integer equality instead of byte comparisons.
//
// Two lines share a class id iff they are equal under the classifier's Policy. Ids are handed out incrementally and never renumbered, so all
// buffers classified by one Classifier are comparable with each other.
package lineclass

import "bytes"

// Whitespace selects how whitespace participates in line equality. The modes are mutually exclusive.
type Whitespace int

const (
	WhitespaceExact        Whitespace = iota // every byte is significant
	WhitespaceIgnoreAll                      // whitespace is skipped entirely
	WhitespaceIgnoreChange                   // runs of whitespace compare equal to a single space; trailing whitespace is ignored
	WhitespaceIgnoreAtEOL                    // trailing whitespace is ignored
)

func (w Whitespace) String() string {
	switch w {
	case WhitespaceExact:
		return "exact"
	case WhitespaceIgnoreAll:
		return "ignore-all"
	case WhitespaceIgnoreChange:
		return "ignore-change"
	case WhitespaceIgnoreAtEOL:
		return "ignore-at-eol"
	default:
		return "unknown"
	}
}

// Policy is the comparison policy applied to lines.
type Policy struct {
	Whitespace Whitespace

	// IgnoreCRAtEOL treats "\r\n" as "\n" (and a final lone "\r" as absent).
	IgnoreCRAtEOL bool
}

// Record is one line of an input buffer.
type Record struct {
	Line  []byte // subslice of the caller's buffer, including the trailing "\n" if present
	Hash  uint64 // Hash(Line, policy)
	Class int    // dense equivalence-class id
}

// HasNewline reports whether the record ends with "\n".
func (r Record) HasNewline() bool {
	return len(r.Line) > 0 && r.Line[len(r.Line)-1] == '\n'
}

// IsSpace reports whether c is an ASCII whitespace byte, including "\n".
func IsSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// IsBlank reports whether line is blank under p. With an exact policy only an empty line or a lone "\n" is blank; any whitespace-relaxing
// policy treats an all-whitespace line as blank.
func IsBlank(line []byte, p Policy) bool {
	if p.Whitespace == WhitespaceExact && !p.IgnoreCRAtEOL {
		return len(line) <= 1 && (len(line) == 0 || line[0] == '\n')
	}
	for _, c := range line {
		if !IsSpace(c) {
			return false
		}
	}
	return true
}

// CountLines returns the number of records buf splits into.
func CountLines(buf []byte) int {
	n := bytes.Count(buf, []byte{'\n'})
	if len(buf) > 0 && buf[len(buf)-1] != '\n' {
		n++
	}
	return n
}

// SplitLines splits buf after each "\n". The final line may lack a newline. An empty buffer has no lines.
func SplitLines(buf []byte) [][]byte {
	lines := make([][]byte, 0, CountLines(buf))
	for len(buf) > 0 {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			lines = append(lines, buf)
			break
		}
		lines = append(lines, buf[:i+1])
		buf = buf[i+1:]
	}
	return lines
}
