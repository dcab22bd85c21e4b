package xdiff

import "github.com/codalotl/textmerge/internal/lineclass"

// group is a contiguous run of changed lines [start, end). Every position between two unchanged lines has a group, usually empty; an empty
// group has start == end and sits just above line start.
type group struct {
	start, end int
}

// compactor slides the change groups of one file, keeping a cursor into the other file's groups in lock step.
type compactor struct {
	f, other *File
	policy   lineclass.Policy
	blank    bool // prefer ending a slid group on a blank line
}

func bug(msg string) {
	panic("xdiff: BUG: " + msg)
}

func (f *File) firstGroup() group {
	g := group{}
	for f.isChanged(g.end) {
		g.end++
	}
	return g
}

// nextGroup moves g to the following group. It returns false if g is already the last group.
func (f *File) nextGroup(g *group) bool {
	if g.end == len(f.recs) {
		return false
	}
	g.start = g.end + 1
	for g.end = g.start; f.isChanged(g.end); g.end++ {
	}
	return true
}

// previousGroup moves g to the preceding group. It returns false if g is already the first group.
func (f *File) previousGroup(g *group) bool {
	if g.start == 0 {
		return false
	}
	g.end = g.start - 1
	for g.start = g.end; f.isChanged(g.start - 1); g.start-- {
	}
	return true
}

// slideDown shifts g one line toward the end of the file if its first line equals the line after it, absorbing any group it runs into.
func (f *File) slideDown(g *group) bool {
	if g.end < len(f.recs) && f.class(g.start) == f.class(g.end) {
		f.setChanged(g.start, false)
		g.start++
		f.setChanged(g.end, true)
		g.end++
		for f.isChanged(g.end) {
			g.end++
		}
		return true
	}
	return false
}

// slideUp shifts g one line toward the start of the file if its last line equals the line before it, absorbing any group it runs into.
func (f *File) slideUp(g *group) bool {
	if g.start > 0 && f.class(g.start-1) == f.class(g.end-1) {
		g.start--
		f.setChanged(g.start, true)
		g.end--
		f.setChanged(g.end, false)
		for f.isChanged(g.start - 1) {
			g.start--
		}
		return true
	}
	return false
}

func (c *compactor) isBlank(i int) bool {
	return lineclass.IsBlank(c.f.Line(i), c.policy)
}

// run moves change groups up and down so that they merge where possible and line up with changes in the other file. It never changes the
// number of changed lines in either file, only their placement within runs of equal lines.
func (c *compactor) run() {
	f, fo := c.f, c.other
	g := f.firstGroup()
	gOther := fo.firstGroup()

	for {
		if g.end != g.start {
			c.compactGroup(&g, &gOther)
		}

		if !f.nextGroup(&g) {
			break
		}
		if !fo.nextGroup(&gOther) {
			bug("group sync broken moving to next group")
		}
	}

	if fo.nextGroup(&gOther) {
		bug("group sync broken at end of file")
	}
}

func (c *compactor) compactGroup(g, gOther *group) {
	f, fo := c.f, c.other
	var earliestEnd, endMatchingOther int
	var blankLines bool

	// Slide up and then down as far as possible; repeat while sliding merges in other groups.
	for {
		groupSize := g.end - g.start

		// The last end index at which this group lines up with a non-empty group in the other file.
		endMatchingOther = -1

		// Whether some blank line could be made the group's last line.
		blankLines = false

		for f.slideUp(g) {
			if !fo.previousGroup(gOther) {
				bug("group sync broken sliding up")
			}
		}

		earliestEnd = g.end
		if gOther.end > gOther.start {
			endMatchingOther = g.end
		}

		for {
			if !blankLines {
				blankLines = c.isBlank(g.end - 1)
			}
			if !f.slideDown(g) {
				break
			}
			if !fo.nextGroup(gOther) {
				bug("group sync broken sliding down")
			}
			if gOther.end > gOther.start {
				endMatchingOther = g.end
			}
		}

		if groupSize == g.end-g.start {
			break
		}
	}

	switch {
	case g.end == earliestEnd:
		// No shifting was possible.
	case endMatchingOther != -1:
		// Move back up to line up with the last group of the other file we passed.
		for gOther.end == gOther.start {
			if !f.slideUp(g) {
				bug("match disappeared")
			}
			if !fo.previousGroup(gOther) {
				bug("group sync broken sliding to match")
			}
		}
	case c.blank && blankLines:
		// The group was already slid down as far as it goes, so reaching a blank bottom line only needs upward shifts.
		for !c.isBlank(g.end - 1) {
			if !f.slideUp(g) {
				bug("blank line disappeared")
			}
			if !fo.previousGroup(gOther) {
				bug("group sync broken sliding to blank line")
			}
		}
	}
}

// compact runs the compactor over both files of e.
func (e *Env) compact() {
	p := e.opts.Policy
	(&compactor{f: &e.old, other: &e.new, policy: p, blank: e.opts.CompactionHeuristic}).run()
	(&compactor{f: &e.new, other: &e.old, policy: p, blank: e.opts.CompactionHeuristic}).run()
}
