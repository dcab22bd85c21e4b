package diff

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hunkSummary struct {
	op       Op
	old, new string
}

func summarize(d Diff) []hunkSummary {
	out := make([]hunkSummary, 0, len(d.Hunks))
	for _, h := range d.Hunks {
		out = append(out, hunkSummary{op: h.Op, old: h.OldText, new: h.NewText})
	}
	return out
}

func TestDiffText_Hunks(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     []hunkSummary
	}{
		{
			name: "both empty",
			want: []hunkSummary{},
		},
		{
			name: "new file",
			new:  "a\nb\n",
			want: []hunkSummary{{OpInsert, "", "a\nb\n"}},
		},
		{
			name: "emptied file",
			old:  "a\nb\n",
			want: []hunkSummary{{OpDelete, "a\nb\n", ""}},
		},
		{
			name: "duplicated line is inserted after the original",
			old:  "a\nb\nc\n",
			new:  "a\nb\nb\nc\n",
			want: []hunkSummary{{OpEqual, "a\nb\n", "a\nb\n"}, {OpInsert, "", "b\n"}, {OpEqual, "c\n", "c\n"}},
		},
		{
			name: "duplicated line is deleted at its last copy",
			old:  "a\nb\nb\nb\nc\n",
			new:  "a\nb\nc\n",
			want: []hunkSummary{{OpEqual, "a\nb\n", "a\nb\n"}, {OpDelete, "b\nb\n", ""}, {OpEqual, "c\n", "c\n"}},
		},
		{
			name: "insertion slides up to end on a blank line",
			old:  "x\nb\n",
			new:  "x\n\nx\nb\n",
			want: []hunkSummary{{OpInsert, "", "x\n\n"}, {OpEqual, "x\nb\n", "x\nb\n"}},
		},
		{
			name: "new block already ending on a blank line stays put",
			old:  "f1\n}\n\nf3\n}\n",
			new:  "f1\n}\n\nf2\n}\n\nf3\n}\n",
			want: []hunkSummary{{OpEqual, "f1\n}\n\n", "f1\n}\n\n"}, {OpInsert, "", "f2\n}\n\n"}, {OpEqual, "f3\n}\n", "f3\n}\n"}},
		},
		{
			name: "final newline added",
			old:  "a\nb",
			new:  "a\nb\n",
			want: []hunkSummary{{OpEqual, "a\n", "a\n"}, {OpReplace, "b", "b\n"}},
		},
		{
			name: "final newline removed",
			old:  "a\nb\n",
			new:  "a\nb",
			want: []hunkSummary{{OpEqual, "a\n", "a\n"}, {OpReplace, "b\n", "b"}},
		},
		{
			name: "text without newlines",
			old:  "hello",
			new:  "hello world",
			want: []hunkSummary{{OpReplace, "hello", "hello world"}},
		},
		{
			name: "CRLF converted to LF on one line",
			old:  "a\r\nb\r\n",
			new:  "a\nb\r\n",
			want: []hunkSummary{{OpReplace, "a\r\n", "a\n"}, {OpEqual, "b\r\n", "b\r\n"}},
		},
		{
			name: "separate edits stay separate hunks",
			old:  "a\nb\nc\nd\ne\n",
			new:  "a\nB\nc\ne\nf\n",
			want: []hunkSummary{
				{OpEqual, "a\n", "a\n"},
				{OpReplace, "b\n", "B\n"},
				{OpEqual, "c\n", "c\n"},
				{OpDelete, "d\n", ""},
				{OpEqual, "e\n", "e\n"},
				{OpInsert, "", "f\n"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := DiffText(tc.old, tc.new)
			require.NoError(t, d.validate())
			assert.Equal(t, tc.want, summarize(d))
		})
	}
}

func TestDiffText_Lines(t *testing.T) {
	t.Run("CR is line content", func(t *testing.T) {
		d := DiffText("a\r\n", "a\n")
		require.Len(t, d.Hunks, 1)
		assert.Equal(t, []DiffLine{{
			Op:      OpReplace,
			OldText: "a\r\n",
			NewText: "a\n",
			Spans:   []DiffSpan{{Op: OpEqual, OldText: "a", NewText: "a"}, {Op: OpDelete, OldText: "\r"}},
		}}, d.Hunks[0].Lines)
	})

	t.Run("added final newline leaves equal spans", func(t *testing.T) {
		d := DiffText("z\nb", "z\nb\n")
		require.Len(t, d.Hunks, 2)
		assert.Equal(t, []DiffLine{{
			Op:      OpReplace,
			OldText: "b",
			NewText: "b\n",
			Spans:   []DiffSpan{{Op: OpEqual, OldText: "b", NewText: "b"}},
		}}, d.Hunks[1].Lines)
	})

	t.Run("lines pair in order and extras are inserts", func(t *testing.T) {
		d := DiffText("a\nb\n", "A\nB\nC\n")
		require.Len(t, d.Hunks, 1)
		lines := d.Hunks[0].Lines
		require.Len(t, lines, 3)
		assert.Equal(t, OpReplace, lines[0].Op)
		assert.Equal(t, "a\n", lines[0].OldText)
		assert.Equal(t, "A\n", lines[0].NewText)
		assert.Equal(t, OpReplace, lines[1].Op)
		assert.Equal(t, DiffLine{Op: OpInsert, NewText: "C\n", Spans: []DiffSpan{{Op: OpInsert, NewText: "C"}}}, lines[2])
	})

	t.Run("blank inserted line has no spans", func(t *testing.T) {
		d := DiffText("a\n", "a\n\n")
		require.Len(t, d.Hunks, 2)
		assert.Equal(t, []DiffLine{{Op: OpInsert, NewText: "\n"}}, d.Hunks[1].Lines)
	})
}

func TestDiffText_Reconstructs(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	words := []string{"alpha", "beta", "gamma", "", "  indented", "x y z", "beta\r"}
	gen := func() string {
		var sb strings.Builder
		for i, n := 0, r.Intn(20); i < n; i++ {
			sb.WriteString(words[r.Intn(len(words))])
			if i < n-1 || r.Intn(2) == 0 {
				sb.WriteByte('\n')
			}
		}
		return sb.String()
	}
	for i := 0; i < 200; i++ {
		a, b := gen(), gen()
		d := DiffText(a, b)
		require.NoError(t, d.validate())
		for k := 1; k < len(d.Hunks); k++ {
			assert.False(t, d.Hunks[k-1].Op == OpEqual && d.Hunks[k].Op == OpEqual, "adjacent equal hunks")
		}
	}
}

func TestDiffsToSpans_FoldsShortEquals(t *testing.T) {
	diffs := []diffmatchpatch.Diff{
		{Type: diffmatchpatch.DiffEqual, Text: "prefix "},
		{Type: diffmatchpatch.DiffDelete, Text: "a"},
		{Type: diffmatchpatch.DiffInsert, Text: "b"},
		{Type: diffmatchpatch.DiffEqual, Text: "cd"},
		{Type: diffmatchpatch.DiffDelete, Text: "e"},
		{Type: diffmatchpatch.DiffEqual, Text: " and a long shared tail"},
	}
	spans := diffsToSpans(diffs)
	assert.Equal(t, []DiffSpan{
		{Op: OpEqual, OldText: "prefix ", NewText: "prefix "},
		{Op: OpReplace, OldText: "acde", NewText: "bcd"},
		{Op: OpEqual, OldText: " and a long shared tail", NewText: " and a long shared tail"},
	}, spans)
}
