package emit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/codalotl/textmerge/internal/xdiff"
)

// ANSI colors used by UnifiedWriter when color is on.
const (
	colorReset  = "\x1b[0m"
	colorHeader = "\x1b[1;36m" // cyan bold
	colorHunk   = "\x1b[35m"   // magenta
	colorDelete = "\x1b[31m"   // red
	colorInsert = "\x1b[32m"   // green
)

// NoNewlineMarker follows a line that lacks a trailing newline.
const NoNewlineMarker = `\ No newline at end of file`

// UnifiedWriter is a Sink that writes unified-diff text. Call Flush when done.
type UnifiedWriter struct {
	w     *bufio.Writer
	color bool

	oldName, newName string
	wroteHeader      bool

	hunks int
}

// NewUnifiedWriter returns a UnifiedWriter writing to w. If oldName or newName is non-empty, a "--- oldName" / "+++ newName" header is
// written before the first hunk. If color is true, ANSI colors are used.
func NewUnifiedWriter(w io.Writer, oldName, newName string, color bool) *UnifiedWriter {
	return &UnifiedWriter{w: bufio.NewWriter(w), color: color, oldName: oldName, newName: newName}
}

// Hunks returns the number of hunks written so far.
func (u *UnifiedWriter) Hunks() int {
	return u.hunks
}

// Flush writes any buffered data to the underlying writer.
func (u *UnifiedWriter) Flush() error {
	return u.w.Flush()
}

func (u *UnifiedWriter) writeColored(color, s string) {
	if u.color {
		u.w.WriteString(color)
		u.w.WriteString(s)
		u.w.WriteString(colorReset)
	} else {
		u.w.WriteString(s)
	}
}

func (u *UnifiedWriter) Hunk(h HunkHeader) error {
	if !u.wroteHeader && (u.oldName != "" || u.newName != "") {
		u.writeColored(colorHeader, "--- "+u.oldName)
		u.w.WriteByte('\n')
		u.writeColored(colorHeader, "+++ "+u.newName)
		u.w.WriteByte('\n')
	}
	u.wroteHeader = true
	u.hunks++

	if u.color && h.Func != "" {
		// Only the range part is colored; the function text is shown plain.
		plain := h
		plain.Func = ""
		u.writeColored(colorHunk, FormatHunkHeader(plain))
		u.w.WriteByte(' ')
		u.w.WriteString(h.Func)
	} else {
		u.writeColored(colorHunk, FormatHunkHeader(h))
	}
	return u.w.WriteByte('\n')
}

func (u *UnifiedWriter) line(prefix byte, color string, line []byte) error {
	missingNewline := len(line) == 0 || line[len(line)-1] != '\n'
	body := line
	if !missingNewline {
		body = line[:len(line)-1]
	}
	if u.color && color != "" {
		u.w.WriteString(color)
		u.w.WriteByte(prefix)
		u.w.Write(body)
		u.w.WriteString(colorReset)
	} else {
		u.w.WriteByte(prefix)
		u.w.Write(body)
	}
	u.w.WriteByte('\n')
	if missingNewline {
		u.w.WriteString(NoNewlineMarker)
		u.w.WriteByte('\n')
	}
	// bufio.Writer errors are sticky; report the first one.
	_, err := u.w.Write(nil)
	return err
}

func (u *UnifiedWriter) Context(line []byte) error {
	return u.line(' ', "", line)
}

func (u *UnifiedWriter) Delete(line []byte) error {
	return u.line('-', colorDelete, line)
}

func (u *UnifiedWriter) Insert(line []byte) error {
	return u.line('+', colorInsert, line)
}

// WriteUnified emits script as a unified diff to w and returns the number of hunks written. No file header is written when the script is
// empty.
func WriteUnified(w io.Writer, env *xdiff.Env, script xdiff.Script, cfg Config, oldName, newName string, color bool) (int, error) {
	u := NewUnifiedWriter(w, oldName, newName, color)
	if err := Emit(env, script, cfg, u); err != nil {
		return u.Hunks(), err
	}
	if err := u.Flush(); err != nil {
		return u.Hunks(), fmt.Errorf("write unified diff: %w", err)
	}
	return u.Hunks(), nil
}
