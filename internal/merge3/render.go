package merge3

import (
	"bytes"

	"github.com/codalotl/textmerge/internal/xdiff"
)

// render writes the merged file: unchanged and clean regions from their side, conflicts between markers.
func (m *merger) render() []byte {
	var buf bytes.Buffer
	buf.Grow(len(m.ours.Records()) * 16)

	i := 0 // next line of ours not yet written
	for _, a := range m.atoms {
		if a.I1 < i {
			bug("atoms overlap on side 1")
		}
		copyLines(&buf, m.ours, i, a.I1-i, false, false)
		if a.Mode == ModeConflict {
			m.renderConflict(&buf, a)
		} else {
			if a.Mode.takesOurs() {
				// A union needs side 1 newline-terminated before side 2 follows it.
				copyLines(&buf, m.ours, a.I1, a.Chg1, m.needsCR(a), a.Mode.takesTheirs())
			}
			if a.Mode.takesTheirs() {
				copyLines(&buf, m.theirs, a.I2, a.Chg2, false, false)
			}
		}
		i = a.I1 + a.Chg1
	}
	copyLines(&buf, m.ours, i, m.ours.Len()-i, false, false)
	return buf.Bytes()
}

func (m *merger) renderConflict(buf *bytes.Buffer, a Atom) {
	size := m.opts.markerSize()
	crlf := m.needsCR(a)

	writeMarker(buf, '<', size, m.opts.OursLabel, crlf)
	copyLines(buf, m.ours, a.I1, a.Chg1, crlf, true)

	if m.opts.Style != StyleMerge {
		writeMarker(buf, '|', size, m.opts.AncestorLabel, crlf)
		copyLines(buf, m.base, a.I0, a.Chg0, crlf, true)
	}

	writeMarker(buf, '=', size, "", crlf)
	copyLines(buf, m.theirs, a.I2, a.Chg2, crlf, true)
	writeMarker(buf, '>', size, m.opts.TheirsLabel, crlf)
}

func writeMarker(buf *bytes.Buffer, c byte, size int, label string, crlf bool) {
	for k := 0; k < size; k++ {
		buf.WriteByte(c)
	}
	if label != "" {
		buf.WriteByte(' ')
		buf.WriteString(label)
	}
	if crlf {
		buf.WriteByte('\r')
	}
	buf.WriteByte('\n')
}

// copyLines writes count lines of f starting at i. With addNL, a missing final newline is supplied ("\r\n" if crlf).
func copyLines(buf *bytes.Buffer, f *xdiff.File, i, count int, crlf, addNL bool) {
	if count < 1 {
		return
	}
	for k := i; k < i+count; k++ {
		buf.Write(f.Line(k))
	}
	if !addNL {
		return
	}
	if last := f.Line(i + count - 1); len(last) == 0 || last[len(last)-1] != '\n' {
		if crlf {
			buf.WriteByte('\r')
		}
		buf.WriteByte('\n')
	}
}

// eol describes a line ending: crlfYes, crlfNo, or crlfUnknown when it cannot be told.
type eol int

const (
	crlfUnknown eol = -1
	crlfNo      eol = 0
	crlfYes     eol = 1
)

func endsCRLF(line []byte) eol {
	if n := len(line); n > 1 && line[n-2] == '\r' {
		return crlfYes
	}
	return crlfNo
}

// lineEOL reports the line ending of line i of f. A final line without a newline takes the ending of the line before it.
func lineEOL(f *xdiff.File, i int) eol {
	n := f.Len()
	if n == 0 {
		return crlfUnknown
	}
	if i < n-1 {
		return endsCRLF(f.Line(i))
	}
	if line := f.Line(i); len(line) > 0 && line[len(line)-1] == '\n' {
		return endsCRLF(line)
	}
	if i == 0 {
		return crlfUnknown
	}
	return endsCRLF(f.Line(i - 1))
}

// needsCR reports whether text written around a, such as markers and supplied newlines, should end in "\r\n". Both sides' lines before the
// atom must use CRLF (or be undecided), and then the ancestor's first line decides; undecided means LF.
func (m *merger) needsCR(a Atom) bool {
	prev := func(i int) int {
		if i > 0 {
			return i - 1
		}
		return 0
	}
	e := lineEOL(m.ours, prev(a.I1))
	if e != crlfNo {
		e = lineEOL(m.theirs, prev(a.I2))
	}
	if e != crlfNo {
		e = lineEOL(m.base, 0)
	}
	return e == crlfYes
}
