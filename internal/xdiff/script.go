package xdiff

import "github.com/codalotl/textmerge/internal/lineclass"

// Change is one contiguous edit: OldCount lines starting at Old (0-based) in the old file were replaced by NewCount lines starting at New in
// the new file. Either count may be zero, but not both.
type Change struct {
	Old, New           int
	OldCount, NewCount int

	// Ignore is set when every line the change touches is blank and blank lines are being ignored.
	Ignore bool
}

// Script is an edit script: changes in strictly increasing Old and New order. The lines between changes are equal in both files under the
// policy used to compute the script.
type Script []Change

// buildScript collects the changed runs of both files into a Script, scanning from the end so runs are found whole.
func (e *Env) buildScript() Script {
	f1, f2 := &e.old, &e.new
	var rev Script
	for i1, i2 := len(f1.recs), len(f2.recs); i1 >= 0 || i2 >= 0; i1, i2 = i1-1, i2-1 {
		if !f1.Changed(i1-1) && !f2.Changed(i2-1) {
			continue
		}
		l1, l2 := i1, i2
		for f1.Changed(i1 - 1) {
			i1--
		}
		for f2.Changed(i2 - 1) {
			i2--
		}
		rev = append(rev, Change{Old: i1, New: i2, OldCount: l1 - i1, NewCount: l2 - i2})
	}

	script := make(Script, len(rev))
	for i, c := range rev {
		script[len(rev)-1-i] = c
	}
	return script
}

// markIgnorable flags changes made only of blank lines.
func (e *Env) markIgnorable(script Script) {
	p := e.opts.Policy
	for i := range script {
		c := &script[i]
		ignore := true
		for j := 0; j < c.OldCount && ignore; j++ {
			ignore = lineclass.IsBlank(e.old.Line(c.Old+j), p)
		}
		for j := 0; j < c.NewCount && ignore; j++ {
			ignore = lineclass.IsBlank(e.new.Line(c.New+j), p)
		}
		c.Ignore = ignore
	}
}

// Apply rebuilds the new file's lines by copying the unchanged lines of old and splicing in the inserted lines of new at each change. With an
// exact policy the result is byte-identical to new.
func (s Script) Apply(old, new *File) [][]byte {
	out := make([][]byte, 0, new.Len())
	i1 := 0
	for _, c := range s {
		for ; i1 < c.Old; i1++ {
			out = append(out, old.Line(i1))
		}
		for j := 0; j < c.NewCount; j++ {
			out = append(out, new.Line(c.New+j))
		}
		i1 = c.Old + c.OldCount
	}
	for ; i1 < old.Len(); i1++ {
		out = append(out, old.Line(i1))
	}
	return out
}

// ChangedLines returns the total number of old and new lines the script touches.
func (s Script) ChangedLines() int {
	n := 0
	for _, c := range s {
		n += c.OldCount + c.NewCount
	}
	return n
}
