// Package applypatch applies unified diffs, as written by the emit package, to a buffer.
package applypatch

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/codalotl/textmerge/internal/emit"
)

// ErrInvalidPatch is wrapped by every error Apply returns for a patch that is malformed or does not fit its input.
var ErrInvalidPatch = errors.New("invalid patch")

// IsInvalidPatch reports whether err was caused by a malformed patch or one that does not match the input.
func IsInvalidPatch(err error) bool {
	return errors.Is(err, ErrInvalidPatch)
}

func invalidPatchError(err error) error {
	if err == nil || errors.Is(err, ErrInvalidPatch) {
		return err
	}
	return errors.Join(ErrInvalidPatch, err)
}

// patchLine is one body line of a hunk. Text includes the line's newline unless a no-newline marker followed it.
type patchLine struct {
	op   byte // ' ', '-' or '+'
	text []byte
}

type hunk struct {
	header emit.HunkHeader
	lines  []patchLine
	at     int // 1-based line of the header within the patch
}

// Apply applies patch to old and returns the patched buffer. patch is a unified diff: optional "---"/"+++" file headers followed by hunks.
// Hunks must be in order and must not overlap. Every context and deleted line must match old exactly, including its line terminator; no
// fuzz or offset search is done.
//
// An empty patch (or one with only file headers) returns a copy of old.
func Apply(old []byte, patch string) ([]byte, error) {
	hunks, err := parsePatch(patch)
	if err != nil {
		return nil, invalidPatchError(err)
	}
	out, err := applyHunks(splitLines(old), hunks)
	if err != nil {
		return nil, invalidPatchError(err)
	}
	return out, nil
}

type parser struct {
	lines []string
	idx   int
}

func newParser(input string) *parser {
	lines := strings.Split(input, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return &parser{lines: lines}
}

func (p *parser) eof() bool { return p.idx >= len(p.lines) }

func (p *parser) peek() (string, bool) {
	if p.eof() {
		return "", false
	}
	return p.lines[p.idx], true
}

func (p *parser) next() (string, bool) {
	line, ok := p.peek()
	if !ok {
		return "", false
	}
	p.idx++
	return line, true
}

func (p *parser) lineNumber() int { return p.idx + 1 }

func parsePatch(patch string) ([]hunk, error) {
	p := newParser(patch)

	// File headers are informational only.
	if line, ok := p.peek(); ok && strings.HasPrefix(line, "--- ") {
		p.next()
		line, ok = p.next()
		if !ok || !strings.HasPrefix(line, "+++ ") {
			return nil, fmt.Errorf(`line %d: expected "+++ " after "--- "`, p.lineNumber()-1)
		}
	}

	var hunks []hunk
	for !p.eof() {
		h, err := parseHunk(p)
		if err != nil {
			return nil, err
		}
		hunks = append(hunks, h)
	}
	return hunks, nil
}

func parseHunk(p *parser) (hunk, error) {
	at := p.lineNumber()
	line, _ := p.next()
	header, err := emit.ParseHunkHeader(line)
	if err != nil {
		return hunk{}, fmt.Errorf("line %d: %w", at, err)
	}

	h := hunk{header: header, at: at}
	oldSeen, newSeen := 0, 0
	for oldSeen < header.OldCount || newSeen < header.NewCount {
		lineNo := p.lineNumber()
		line, ok := p.next()
		if !ok {
			return hunk{}, fmt.Errorf("hunk at line %d: patch ends after %d of %d old and %d of %d new lines", at, oldSeen, header.OldCount, newSeen, header.NewCount)
		}

		op, text := byte(' '), ""
		if line != "" {
			// A bare empty line is a context line whose leading space was stripped.
			op, text = line[0], line[1:]
		}
		switch op {
		case ' ':
			oldSeen++
			newSeen++
		case '-':
			oldSeen++
		case '+':
			newSeen++
		default:
			return hunk{}, fmt.Errorf("line %d: unexpected hunk line %q", lineNo, line)
		}
		if oldSeen > header.OldCount || newSeen > header.NewCount {
			return hunk{}, fmt.Errorf("line %d: hunk at line %d has more lines than its header declares", lineNo, at)
		}

		pl := patchLine{op: op, text: []byte(text + "\n")}
		if next, ok := p.peek(); ok && next == emit.NoNewlineMarker {
			p.next()
			pl.text = pl.text[:len(pl.text)-1]
		}
		h.lines = append(h.lines, pl)
	}

	// A marker can only follow a line; one left here belongs to nothing.
	if next, ok := p.peek(); ok && next == emit.NoNewlineMarker {
		return hunk{}, fmt.Errorf("line %d: stray %q", p.lineNumber(), emit.NoNewlineMarker)
	}
	return h, nil
}

// splitLines splits b after each '\n'. The last line lacks one if b does not end with a newline.
func splitLines(b []byte) [][]byte {
	var lines [][]byte
	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			lines = append(lines, b)
			break
		}
		lines = append(lines, b[:i+1])
		b = b[i+1:]
	}
	return lines
}

func applyHunks(orig [][]byte, hunks []hunk) ([]byte, error) {
	var out bytes.Buffer
	pos := 0 // next line of orig not yet copied
	for _, h := range hunks {
		start := h.header.OldStart - 1
		if start < pos {
			return nil, fmt.Errorf("hunk at line %d: starts at line %d, before the end of the previous hunk", h.at, h.header.OldStart)
		}
		if start+h.header.OldCount > len(orig) {
			return nil, fmt.Errorf("hunk at line %d: old range %d,%d is past the end of the input (%d lines)", h.at, h.header.OldStart, h.header.OldCount, len(orig))
		}
		for _, ln := range orig[pos:start] {
			out.Write(ln)
		}

		i := start
		for _, pl := range h.lines {
			switch pl.op {
			case ' ', '-':
				if !bytes.Equal(orig[i], pl.text) {
					kind := "context"
					if pl.op == '-' {
						kind = "delete"
					}
					return nil, fmt.Errorf("hunk at line %d: %s mismatch at input line %d: want %q, got %q", h.at, kind, i+1, pl.text, orig[i])
				}
				if pl.op == ' ' {
					out.Write(pl.text)
				}
				i++
			case '+':
				out.Write(pl.text)
			}
		}
		pos = i
	}
	for _, ln := range orig[pos:] {
		out.Write(ln)
	}
	return out.Bytes(), nil
}
