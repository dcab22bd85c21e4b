// Package diff turns two versions of a text into a Diff that records what changed line by line and, within changed lines, character by
// character.
//
// A Diff keeps both full texts and a list of hunks that alternately cover unchanged and changed runs of whole lines. Concatenating every
// hunk's OldText gives Diff.OldText, and likewise for NewText. Changed hunks carry Lines, pairing the i-th removed line with the i-th added
// line; changed lines carry Spans, which never contain '\n'.
//
// Line matching is done by the xdiff engine with exact comparison and the blank-line compaction heuristic, so hunk boundaries are the ones
// `textmerge diff` prints: an ambiguous insertion or deletion is slid as far down as it goes, then up until it ends on a blank line if one is
// in reach. Spans come from a character diff of each paired line (github.com/sergi/go-diff), with short unchanged runs between two edits
// folded into one span.
//
// Only '\n' ends a line. A "\r" before it is line content, so "a\r\n" and "a\n" differ by a deleted "\r" span. A final line without '\n'
// differs from the same line with one.
//
//	d := diff.DiffText(oldText, newText)
//	fmt.Print(d.RenderUnifiedDiff(false, "a/file.txt", "b/file.txt", 3))
//
// RenderUnifiedDiff produces a patch through the emit package (hunk headers, "\ No newline at end of file" markers); internal/applypatch
// applies it. RenderPretty is a colorized terminal view without hunk headers.
package diff
