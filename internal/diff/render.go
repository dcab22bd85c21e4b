package diff

import (
	"fmt"
	"strings"

	"github.com/codalotl/textmerge/internal/emit"
	"github.com/codalotl/textmerge/internal/xdiff"
)

// Colors (ANSI 256) for pretty output.
const (
	prettyReset     = "\x1b[0m"
	prettyBlackFG   = "\x1b[30m"
	prettyPinkLine  = "\x1b[48;5;224m" // deleted lines
	prettyPinkSpan  = "\x1b[48;5;217m" // deleted spans
	prettyGreenLine = "\x1b[48;5;194m" // added lines
	prettyGreenSpan = "\x1b[48;5;114m" // added spans
	prettyCyanBold  = "\x1b[1;36m"
)

// prettyHeader returns the filename header line of RenderPretty, or "" if both names are empty.
func prettyHeader(from, to string) string {
	switch {
	case from == "" && to == "":
		return ""
	case from == "":
		return fmt.Sprintf("add %s:", to)
	case to == "":
		return fmt.Sprintf("delete %s:", from)
	case from == to:
		return from + ":"
	}
	return fmt.Sprintf("%s -> %s:", from, to)
}

// RenderPretty returns a human-oriented, colorized rendering of d without unified-diff hunk headers. Lines are prefixed " " for context, "-"
// for deletions and "+" for insertions; a replaced line is shown as a "-" line followed by a "+" line, with the changed spans highlighted.
//
// If fromFilename and toFilename are both empty, no header is printed. Otherwise a cyan header line is emitted in one of these forms:
//   - "add <to>:" when only toFilename is set
//   - "delete <from>:" when only fromFilename is set
//   - "<name>:" when both are equal
//   - "<from> -> <to>:" otherwise
//
// contextSize unchanged lines are shown around each group of changes; groups separated by at most 2*contextSize unchanged lines are shown
// together. Lines are joined with "\n" and have no trailing newline. The output is meant for terminals; use RenderUnifiedDiff for patches.
func (d Diff) RenderPretty(fromFilename string, toFilename string, contextSize int) string {
	var out []string
	if header := prettyHeader(fromFilename, toFilename); header != "" {
		out = append(out, prettyCyanBold+header+prettyReset)
	}

	for i := 0; i < len(d.Hunks); {
		if d.Hunks[i].Op == OpEqual {
			i++
			continue
		}

		// Leading context comes from the tail of the preceding equal hunk.
		if i > 0 && d.Hunks[i-1].Op == OpEqual && contextSize > 0 {
			eq := splitPreserveEOL(d.Hunks[i-1].OldText, defaultEOL)
			for _, ln := range eq[len(eq)-min(contextSize, len(eq)):] {
				out = append(out, prettyBlackFG+" "+trimLine(ln)+prettyReset)
			}
		}
		out = appendPrettyChange(out, d.Hunks[i])

		// Take in following changes while the equal run between them is short; otherwise show trailing context and stop.
		j := i + 1
		for j < len(d.Hunks) {
			if d.Hunks[j].Op != OpEqual {
				out = appendPrettyChange(out, d.Hunks[j])
				j++
				continue
			}
			eq := splitPreserveEOL(d.Hunks[j].OldText, defaultEOL)
			bridge := j+1 < len(d.Hunks) && d.Hunks[j+1].Op != OpEqual && len(eq) <= 2*contextSize
			if !bridge {
				eq = eq[:min(contextSize, len(eq))]
			}
			for _, ln := range eq {
				out = append(out, " "+trimLine(ln))
			}
			if !bridge {
				break
			}
			out = appendPrettyChange(out, d.Hunks[j+1])
			j += 2
		}
		i = j
	}
	return strings.Join(out, defaultEOL)
}

func trimLine(s string) string {
	core, _ := trimEOL(s, defaultEOL)
	return core
}

func appendPrettyChange(out []string, h DiffHunk) []string {
	for _, ln := range h.Lines {
		if ln.Op == OpEqual {
			out = append(out, prettyBlackFG+" "+trimLine(ln.OldText)+prettyReset)
			continue
		}
		if ln.Op == OpDelete || ln.Op == OpReplace {
			out = append(out, prettyBlackFG+prettyPinkLine+"-"+prettySide(ln, false)+prettyReset)
		}
		if ln.Op == OpInsert || ln.Op == OpReplace {
			out = append(out, prettyBlackFG+prettyGreenLine+"+"+prettySide(ln, true)+prettyReset)
		}
	}
	return out
}

// prettySide renders one side of a changed line, highlighting the spans that side changed. After a highlighted span, the line's base
// background is restored.
func prettySide(ln DiffLine, newSide bool) string {
	lineBg, spanBg := prettyPinkLine, prettyPinkSpan
	if newSide {
		lineBg, spanBg = prettyGreenLine, prettyGreenSpan
	}

	var b strings.Builder
	for _, sp := range ln.Spans {
		text := sp.OldText
		if newSide {
			text = sp.NewText
		}
		switch {
		case sp.Op == OpEqual:
			b.WriteString(text)
		case text != "":
			b.WriteString(prettyReset + prettyBlackFG + spanBg)
			b.WriteString(text)
			b.WriteString(prettyReset + prettyBlackFG + lineBg)
		}
	}
	return b.String()
}

// RenderUnifiedDiff returns d as a unified diff with contextSize lines of context, with "--- fromFilename" and "+++ toFilename" headers. If
// color, the diff includes ANSI colors. If d has no changes, the result is "".
func (d Diff) RenderUnifiedDiff(color bool, fromFilename string, toFilename string, contextSize int) string {
	env, script, err := xdiff.Diff([]byte(d.OldText), []byte(d.NewText), textDiffOptions)
	if err != nil {
		panic(fmt.Errorf("RenderUnifiedDiff: %w", err))
	}
	var b strings.Builder
	if _, err := emit.WriteUnified(&b, env, script, emit.Config{Context: contextSize}, fromFilename, toFilename, color); err != nil {
		panic(fmt.Errorf("RenderUnifiedDiff: %w", err))
	}
	return b.String()
}
