// Package merge3 merges two descendants of a common ancestor. Both are diffed against the ancestor; changes that touch disjoint ancestor lines
// are combined, and overlapping ones become conflicts, written out between conflict markers unless a Favor resolves them.
//
// Internal consistency failures panic with a message starting with "merge3: BUG:".
package merge3

import (
	"bytes"

	"github.com/codalotl/textmerge/internal/lineclass"
	"github.com/codalotl/textmerge/internal/xdiff"
)

// Mode says how a merge atom is resolved.
type Mode int

const (
	ModeConflict Mode = 0
	ModeOurs     Mode = 1 // take side 1
	ModeTheirs   Mode = 2 // take side 2
	ModeBoth     Mode = 3 // take side 1, then side 2
)

func (m Mode) takesOurs() bool   { return m&ModeOurs != 0 }
func (m Mode) takesTheirs() bool { return m&ModeTheirs != 0 }

func (m Mode) String() string {
	switch m {
	case ModeConflict:
		return "conflict"
	case ModeOurs:
		return "ours"
	case ModeTheirs:
		return "theirs"
	case ModeBoth:
		return "both"
	}
	return "Mode(?)"
}

// Atom is one region of a merge. I0/Chg0 is the range of ancestor lines it replaces; I1/Chg1 and I2/Chg2 are what side 1 and side 2 have in
// its place. Lines of side 1 before I1 that no earlier atom covers are unchanged on both sides.
//
// Atoms produced by re-diffing a conflict keep the ancestor range of the conflict they came from.
type Atom struct {
	Mode     Mode
	I0, Chg0 int
	I1, Chg1 int
	I2, Chg2 int
}

// Result is the outcome of Merge.
type Result struct {
	Output []byte

	// Conflicts is the number of conflicts left in Output after favoring. Zero means the merge is clean.
	Conflicts int

	// Atoms are the changed regions in order, with Favor applied. It is nil when one side made no changes.
	Atoms []Atom
}

// Merge merges ours and theirs, two edited copies of ancestor. If either side is unchanged (under the comparison policy), the result is a
// copy of the other side.
func Merge(ancestor, ours, theirs []byte, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Diff.CheckSize(ancestor, ours, theirs); err != nil {
		return nil, err
	}
	dopts := opts.Diff
	dopts.TrimCommonTail = false
	dopts.IgnoreBlankLines = false

	// One classifier for all three buffers, so lines compare across the two diffs by class id.
	hint := lineclass.CountLines(ancestor) + lineclass.CountLines(ours) + lineclass.CountLines(theirs)
	c := lineclass.NewClassifier(dopts.Policy, hint)
	base := c.Classify(ancestor)
	recs1 := c.Classify(ours)
	recs2 := c.Classify(theirs)

	env1, script1 := xdiff.ComputeRecords(base, recs1, c.Len(), dopts)
	env2, script2 := xdiff.ComputeRecords(base, recs2, c.Len(), dopts)

	if len(script1) == 0 {
		return &Result{Output: bytes.Clone(theirs)}, nil
	}
	if len(script2) == 0 {
		return &Result{Output: bytes.Clone(ours)}, nil
	}

	m := &merger{
		opts:   opts,
		dopts:  dopts,
		level:  opts.level(),
		base:   env1.Old(),
		ours:   env1.New(),
		theirs: env2.New(),
	}
	m.walk(script1, script2)

	switch {
	case opts.Style == StyleZealousDiff3:
		m.trimConflicts()
	case m.level >= LevelZealous:
		m.refine()
		m.simplify(m.level >= LevelZealousAlnum)
	}

	conflicts := 0
	for i := range m.atoms {
		a := &m.atoms[i]
		if a.Mode == ModeConflict {
			a.Mode = opts.Favor.mode()
		}
		if a.Mode == ModeConflict {
			conflicts++
		}
	}

	return &Result{Output: m.render(), Conflicts: conflicts, Atoms: m.atoms}, nil
}

type merger struct {
	opts  Options
	dopts xdiff.Options
	level Level

	base, ours, theirs *xdiff.File

	atoms []Atom
}

// add appends an atom, folding it into the previous one when the two touch on either side. Folding atoms of different modes yields a conflict.
func (m *merger) add(a Atom) {
	if n := len(m.atoms); n > 0 {
		last := &m.atoms[n-1]
		if a.I1 <= last.I1+last.Chg1 || a.I2 <= last.I2+last.Chg2 {
			if a.Mode != last.Mode {
				last.Mode = ModeConflict
			}
			last.Chg0 = a.I0 + a.Chg0 - last.I0
			last.Chg1 = a.I1 + a.Chg1 - last.I1
			last.Chg2 = a.I2 + a.Chg2 - last.I2
			return
		}
	}
	m.atoms = append(m.atoms, a)
}

// sameLines reports whether n lines of ours starting at i1 equal n lines of theirs starting at i2.
func (m *merger) sameLines(i1, i2, n int) bool {
	for k := 0; k < n; k++ {
		if m.ours.Record(i1+k).Class != m.theirs.Record(i2+k).Class {
			return false
		}
	}
	return true
}

// walk combines the two ancestor scripts into atoms. Ranges in the scripts are ancestor lines (Old) and side lines (New).
func (m *merger) walk(s1, s2 xdiff.Script) {
	p1, p2 := 0, 0
	for p1 < len(s1) && p2 < len(s2) {
		x1, x2 := s1[p1], s2[p2]

		// Side 1 changes strictly before side 2: take side 1, and side 2 is still the ancestor there.
		if x1.Old+x1.OldCount < x2.Old {
			m.add(Atom{Mode: ModeOurs, I0: x1.Old, Chg0: x1.OldCount, I1: x1.New, Chg1: x1.NewCount, I2: x2.New - x2.Old + x1.Old, Chg2: x1.OldCount})
			p1++
			continue
		}
		if x2.Old+x2.OldCount < x1.Old {
			m.add(Atom{Mode: ModeTheirs, I0: x2.Old, Chg0: x2.OldCount, I1: x1.New - x1.Old + x2.Old, Chg1: x2.OldCount, I2: x2.New, Chg2: x2.NewCount})
			p2++
			continue
		}

		if m.level == LevelMinimal || x1.Old != x2.Old || x1.OldCount != x2.OldCount || x1.NewCount != x2.NewCount ||
			!m.sameLines(x1.New, x2.New, x1.NewCount) {
			// Conflict over the union of both ancestor ranges. off and ffo are how far side 1's range starts and ends after side 2's; the
			// side whose range is narrower is widened by the unchanged lines it shares with the ancestor.
			off := x1.Old - x2.Old
			ffo := off + x1.OldCount - x2.OldCount

			i0, i1, i2 := x1.Old, x1.New, x2.New
			if off > 0 {
				i0 -= off
				i1 -= off
			} else {
				i2 += off
			}
			chg0 := x1.Old + x1.OldCount - i0
			chg1 := x1.New + x1.NewCount - i1
			chg2 := x2.New + x2.NewCount - i2
			if ffo < 0 {
				chg0 -= ffo
				chg1 -= ffo
			} else {
				chg2 += ffo
			}
			m.add(Atom{Mode: ModeConflict, I0: i0, Chg0: chg0, I1: i1, Chg1: chg1, I2: i2, Chg2: chg2})
		}

		end1 := x1.Old + x1.OldCount
		end2 := x2.Old + x2.OldCount
		if end1 >= end2 {
			p2++
		}
		if end2 >= end1 {
			p1++
		}
	}

	// One script is exhausted; the other side's remaining changes apply against an unchanged ancestor on this side, shifted by how much this
	// side grew or shrank overall.
	for ; p1 < len(s1); p1++ {
		x1 := s1[p1]
		m.add(Atom{Mode: ModeOurs, I0: x1.Old, Chg0: x1.OldCount, I1: x1.New, Chg1: x1.NewCount, I2: x1.Old + m.theirs.Len() - m.base.Len(), Chg2: x1.OldCount})
	}
	for ; p2 < len(s2); p2++ {
		x2 := s2[p2]
		m.add(Atom{Mode: ModeTheirs, I0: x2.Old, Chg0: x2.OldCount, I1: x2.Old + m.ours.Len() - m.base.Len(), Chg1: x2.OldCount, I2: x2.New, Chg2: x2.NewCount})
	}
}

// trimConflicts moves lines that both sides share at the start or end of a conflict out of it.
func (m *merger) trimConflicts() {
	for i := range m.atoms {
		a := &m.atoms[i]
		if a.Mode != ModeConflict {
			continue
		}
		for a.Chg1 > 0 && a.Chg2 > 0 && m.sameLines(a.I1, a.I2, 1) {
			a.I1++
			a.I2++
			a.Chg1--
			a.Chg2--
		}
		for a.Chg1 > 0 && a.Chg2 > 0 && m.sameLines(a.I1+a.Chg1-1, a.I2+a.Chg2-1, 1) {
			a.Chg1--
			a.Chg2--
		}
	}
}

// refine re-diffs each conflict's two sides against each other and replaces the conflict with the smaller conflicts found, or resolves it
// when the sides turn out equal. The new atoms are not refined again.
func (m *merger) refine() {
	out := make([]Atom, 0, len(m.atoms))
	for _, a := range m.atoms {
		if a.Mode != ModeConflict || a.Chg1 == 0 || a.Chg2 == 0 {
			out = append(out, a)
			continue
		}
		out = append(out, m.refineConflict(a)...)
	}
	m.atoms = out
}

func (m *merger) refineConflict(a Atom) []Atom {
	// The two sides are compared as fresh files, with their own classifier.
	c := lineclass.NewClassifier(m.dopts.Policy, a.Chg1+a.Chg2)
	reclass := func(f *xdiff.File, start, n int) []lineclass.Record {
		recs := make([]lineclass.Record, n)
		for k := range recs {
			line := f.Line(start + k)
			class, hash := c.ClassOf(line)
			recs[k] = lineclass.Record{Line: line, Hash: hash, Class: class}
		}
		return recs
	}
	r1 := reclass(m.ours, a.I1, a.Chg1)
	r2 := reclass(m.theirs, a.I2, a.Chg2)

	_, script := xdiff.ComputeRecords(r1, r2, c.Len(), m.dopts)
	if len(script) == 0 {
		// Folding neighbouring atoms or widening a narrower side can leave both sides equal. Both agree, so take side 1.
		a.Mode = ModeOurs
		return []Atom{a}
	}

	sub := make([]Atom, len(script))
	for k, ch := range script {
		sub[k] = Atom{Mode: ModeConflict, I0: a.I0, Chg0: a.Chg0, I1: a.I1 + ch.Old, Chg1: ch.OldCount, I2: a.I2 + ch.New, Chg2: ch.NewCount}
	}
	return sub
}

// simplify joins adjacent conflicts separated by at most 3 unchanged lines, taking those lines into the conflict. With alnum, conflicts
// separated only by lines that contain no ASCII letter or digit are joined too.
func (m *merger) simplify(alnum bool) {
	atoms := m.atoms
	for k := 0; k+1 < len(atoms); {
		a, next := &atoms[k], atoms[k+1]
		begin, end := a.I1+a.Chg1, next.I1
		if a.Mode != ModeConflict || next.Mode != ModeConflict || (end-begin > 3 && (!alnum || m.containsAlnum(begin, end-begin))) {
			k++
			continue
		}
		a.Chg0 = next.I0 + next.Chg0 - a.I0
		a.Chg1 = next.I1 + next.Chg1 - a.I1
		a.Chg2 = next.I2 + next.Chg2 - a.I2
		atoms = append(atoms[:k+1], atoms[k+2:]...)
	}
	m.atoms = atoms
}

// containsAlnum reports whether any of n lines of ours starting at i contains an ASCII letter or digit.
func (m *merger) containsAlnum(i, n int) bool {
	for ; n > 0; n, i = n-1, i+1 {
		for _, c := range m.ours.Line(i) {
			if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
				return true
			}
		}
	}
	return false
}

func bug(msg string) {
	panic("merge3: BUG: " + msg)
}
