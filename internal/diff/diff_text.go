package diff

import (
	"fmt"
	"strings"

	"github.com/codalotl/textmerge/internal/xdiff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// textDiffOptions are the line-diff options DiffText uses. Lines compare exactly, so equal hunks are byte-identical.
var textDiffOptions = xdiff.Options{CompactionHeuristic: true}

// DiffText diffs oldText to newText, returning a Diff. Lines are matched with the xdiff engine; changed line pairs are then diffed
// character-by-character into spans.
func DiffText(oldText, newText string) Diff {
	env, script, err := xdiff.Diff([]byte(oldText), []byte(newText), textDiffOptions)
	if err != nil {
		panic(fmt.Errorf("DiffText: %w", err))
	}
	oldFile, newFile := env.Old(), env.New()

	var hunks []DiffHunk
	addEqual := func(from, to int) {
		if from < to {
			text := joinLines(oldFile, from, to)
			hunks = append(hunks, DiffHunk{Op: OpEqual, OldText: text, NewText: text})
		}
	}

	next := 0 // next old line not yet covered by a hunk
	for _, c := range script {
		addEqual(next, c.Old)
		dels := splitLines(oldFile, c.Old, c.Old+c.OldCount)
		ins := splitLines(newFile, c.New, c.New+c.NewCount)
		oldBlock, newBlock := strings.Join(dels, ""), strings.Join(ins, "")
		hunks = append(hunks, DiffHunk{Op: opFor(oldBlock, newBlock), OldText: oldBlock, NewText: newBlock, Lines: buildDiffLines(dels, ins)})
		next = c.Old + c.OldCount
	}
	addEqual(next, oldFile.Len())

	diff := Diff{OldText: oldText, NewText: newText, Hunks: hunks}
	if err := diff.validate(); err != nil {
		panic(fmt.Errorf("DiffText: validate failed with %v", err))
	}
	return diff
}

func splitLines(f *xdiff.File, from, to int) []string {
	if from >= to {
		return nil
	}
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, string(f.Line(i)))
	}
	return out
}

func joinLines(f *xdiff.File, from, to int) string {
	var b strings.Builder
	for i := from; i < to; i++ {
		b.Write(f.Line(i))
	}
	return b.String()
}

// buildDiffLines pairs deleted and inserted lines in order and computes spans for each line.
func buildDiffLines(deleteLines, insertLines []string) []DiffLine {
	dmp := diffmatchpatch.New()
	n := max(len(deleteLines), len(insertLines))
	lines := make([]DiffLine, 0, n)
	for i := 0; i < n; i++ {
		var oldLine, newLine string
		if i < len(deleteLines) {
			oldLine = deleteLines[i]
		}
		if i < len(insertLines) {
			newLine = insertLines[i]
		}

		op := opFor(oldLine, newLine)
		if op == OpEqual {
			lines = append(lines, DiffLine{Op: OpEqual, OldText: oldLine, NewText: newLine})
			continue
		}

		oldCore, _ := trimEOL(oldLine, defaultEOL)
		newCore, _ := trimEOL(newLine, defaultEOL)
		var spans []DiffSpan
		switch op {
		case OpReplace:
			spans = diffsToSpans(dmp.DiffMain(oldCore, newCore, false))
		default:
			if oldCore != "" || newCore != "" {
				spans = []DiffSpan{{Op: op, OldText: oldCore, NewText: newCore}}
			}
		}
		lines = append(lines, DiffLine{Op: op, OldText: oldLine, NewText: newLine, Spans: spans})
	}
	return lines
}

// splitPreserveEOL splits text after each eol. The last line lacks eol if text does not end with one.
func splitPreserveEOL(text, eol string) []string {
	if eol == "" {
		eol = defaultEOL
	}
	var lines []string
	for text != "" {
		idx := strings.Index(text, eol)
		if idx == -1 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:idx+len(eol)])
		text = text[idx+len(eol):]
	}
	return lines
}

// trimEOL removes a trailing eol from a line if present.
func trimEOL(line, eol string) (string, bool) {
	if eol != "" && strings.HasSuffix(line, eol) {
		return line[:len(line)-len(eol)], true
	}
	return line, false
}

// maxSandwichedEqualLen is the longest unchanged run between two changed spans that is folded into them.
const maxSandwichedEqualLen = 8

// joinSpans concatenates spans into one. Every span contributes its OldText and NewText, which for inserts and deletes includes an empty side.
func joinSpans(spans ...DiffSpan) DiffSpan {
	var oldBuf, newBuf strings.Builder
	for _, s := range spans {
		oldBuf.WriteString(s.OldText)
		newBuf.WriteString(s.NewText)
	}
	old, new := oldBuf.String(), newBuf.String()
	op := opFor(old, new)
	if op == OpEqual && old != "" && spans[0].Op != OpEqual {
		// Changed text that happens to read the same on both sides is still a change.
		op = OpReplace
	}
	return DiffSpan{Op: op, OldText: old, NewText: new}
}

// diffsToSpans converts character diffs into spans. Consecutive changes become one span, and short unchanged runs between two changes are
// folded into them, so a line reads as a few coarse edits instead of many tiny ones.
func diffsToSpans(diffs []diffmatchpatch.Diff) []DiffSpan {
	var spans []DiffSpan
	push := func(s DiffSpan) {
		if n := len(spans); n > 0 && (spans[n-1].Op == OpEqual) == (s.Op == OpEqual) {
			spans[n-1] = joinSpans(spans[n-1], s)
		} else {
			spans = append(spans, s)
		}
		// [change][short equal][change] collapses; the result may enable another collapse to its left.
		for n := len(spans); n >= 3; n = len(spans) {
			a, eq, b := spans[n-3], spans[n-2], spans[n-1]
			if a.Op == OpEqual || eq.Op != OpEqual || b.Op == OpEqual || len(eq.OldText) > maxSandwichedEqualLen {
				break
			}
			spans = append(spans[:n-3], joinSpans(a, eq, b))
		}
	}

	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			push(DiffSpan{Op: OpEqual, OldText: d.Text, NewText: d.Text})
		case diffmatchpatch.DiffDelete:
			push(DiffSpan{Op: OpDelete, OldText: d.Text})
		case diffmatchpatch.DiffInsert:
			push(DiffSpan{Op: OpInsert, NewText: d.Text})
		}
	}
	return spans
}
