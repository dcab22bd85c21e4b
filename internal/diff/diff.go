package diff

// Op is an operation from old text to new text.
type Op int

// Operations from old text to new text.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
	OpReplace
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	}
	return "Op(?)"
}

// opFor returns the Op that turns old into new, assuming they differ unless both are empty or equal.
func opFor(old, new string) Op {
	switch {
	case old == new:
		return OpEqual
	case old == "":
		return OpInsert
	case new == "":
		return OpDelete
	}
	return OpReplace
}

// Diff is a diff from OldText to NewText, as an ordered list of hunks that alternate between unchanged regions and changed regions.
//
// Invariants:
//   - concat(Hunks.OldText) == OldText
//   - concat(Hunks.NewText) == NewText
type Diff struct {
	OldText string     // Entire original text.
	NewText string     // Entire revised text.
	Hunks   []DiffHunk // Ordered hunks that cover the whole diff.
}

// DiffHunk is a run of whole lines. OldText and NewText include line terminators.
//
// Invariants:
//   - If OpEqual, OldText == NewText and Lines is nil. Otherwise,
//   - concat(Lines.OldText) == OldText
//   - concat(Lines.NewText) == NewText
type DiffHunk struct {
	Op      Op
	OldText string     // Empty for inserts.
	NewText string     // Empty for deletes.
	Lines   []DiffLine // Per-line diffs when Op != OpEqual.
}

// DiffLine is a diff on a single line. In a replaced hunk, the i-th old line is paired with the i-th new line; extra lines on either side
// are pure deletes or inserts.
//
// Invariants:
//   - If OpEqual, Spans is nil. Otherwise,
//   - concat(Spans.OldText) + \n? == OldText
//   - concat(Spans.NewText) + \n? == NewText
type DiffLine struct {
	Op      Op
	OldText string     // Entire old line, including its newline if present; empty for inserts.
	NewText string     // Entire new line, including its newline if present; empty for deletes.
	Spans   []DiffSpan // Intra-line segments when Op != OpEqual. Spans never contain newlines.
}

// DiffSpan is a diff within a line. It never contains "\n".
type DiffSpan struct {
	Op      Op
	OldText string // Empty for inserts.
	NewText string // Empty for deletes.
}

// defaultEOL is the line terminator. Lines ending in "\r\n" keep the "\r" as line content.
const defaultEOL = "\n"
