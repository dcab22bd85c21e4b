package xdiff

import "github.com/codalotl/textmerge/internal/lineclass"

// Env is a prepared pair of files. Both files were classified by the same classifier, so equal lines carry equal class ids.
type Env struct {
	old, new File
	opts     Options
	h        Heuristics
	stats    Stats
}

// Stats records how much work bisection did.
type Stats struct {
	Splits      int // boxes split by the midpoint search
	MaxCost     int // largest edit cost reached by a single split
	CostCeiling int // cost ceiling in effect (0 when no split ran)
}

// Old returns the old side.
func (e *Env) Old() *File {
	return &e.old
}

// New returns the new side.
func (e *Env) New() *File {
	return &e.new
}

// Options returns the options e was prepared with.
func (e *Env) Options() Options {
	return e.opts
}

// Stats returns the bisection work counters.
func (e *Env) Stats() Stats {
	return e.stats
}

type action uint8

const (
	actionDiscard action = iota
	actionKeep
	actionInvestigate
)

// newEnv builds the files, trims the common ends, and discards records that cannot take part in a match. classes must be at least one more
// than the largest class id in old and new.
func newEnv(old, new []lineclass.Record, classes int, opts Options) *Env {
	e := &Env{
		old:  newFile(old),
		new:  newFile(new),
		opts: opts,
		h:    opts.heuristics(),
	}
	e.trimEnds()
	e.cleanupRecords(classes)
	return e
}

func (e *Env) trimEnds() {
	f1, f2 := &e.old, &e.new
	lim := min(len(f1.recs), len(f2.recs))
	i := 0
	for ; i < lim; i++ {
		if f1.class(i) != f2.class(i) {
			break
		}
	}
	f1.dstart, f2.dstart = i, i

	lim -= i
	j := 0
	for ; j < lim; j++ {
		if f1.class(len(f1.recs)-1-j) != f2.class(len(f2.recs)-1-j) {
			break
		}
	}
	f1.dend = len(f1.recs) - j - 1
	f2.dend = len(f2.recs) - j - 1
}

func (e *Env) cleanupRecords(classes int) {
	f1, f2 := &e.old, &e.new

	// Occurrences of each class across each whole file.
	cnt1 := make([]int, classes)
	cnt2 := make([]int, classes)
	for _, r := range f1.recs {
		cnt1[r.Class]++
	}
	for _, r := range f2.recs {
		cnt2[r.Class]++
	}

	action1 := e.actions(f1, cnt2)
	action2 := e.actions(f2, cnt1)
	e.reduce(f1, action1)
	e.reduce(f2, action2)
}

// actions classifies each trimmed record of f by how many times its class occurs in the other file.
func (e *Env) actions(f *File, other []int) []action {
	acts := make([]action, len(f.recs)+1)
	mlim := min(bogosqrt(len(f.recs)), e.h.MaxEqLimit)
	for i := f.dstart; i <= f.dend; i++ {
		nm := other[f.class(i)]
		switch {
		case nm == 0:
			acts[i] = actionDiscard
		case nm >= mlim && !e.opts.NeedMinimal:
			acts[i] = actionInvestigate
		default:
			acts[i] = actionKeep
		}
	}
	return acts
}

// reduce fills f.rindex/f.ha with the kept records and marks discarded records changed.
func (e *Env) reduce(f *File, acts []action) {
	n := max(f.dend-f.dstart+1, 0)
	f.rindex = make([]int, 0, n)
	f.ha = make([]int, 0, n)
	for i := f.dstart; i <= f.dend; i++ {
		if acts[i] == actionKeep || (acts[i] == actionInvestigate && !e.cleanMultimatch(acts, i, f.dstart, f.dend)) {
			f.rindex = append(f.rindex, i)
			f.ha = append(f.ha, f.class(i))
		} else {
			f.setChanged(i, true)
		}
	}
}

// cleanMultimatch reports whether the multi-match record i sits inside a run dense enough in unmatched records that it should be discarded
// too. Only records in [s, e] are considered, limited to a window around i.
func (e *Env) cleanMultimatch(acts []action, i, s, end int) bool {
	if i-s > e.h.SimScanWindow {
		s = i - e.h.SimScanWindow
	}
	if end-i > e.h.SimScanWindow {
		end = i + e.h.SimScanWindow
	}

	rdis0, rpdis0 := 0, 1
	for r := 1; i-r >= s; r++ {
		a := acts[i-r]
		if a == actionKeep {
			break
		}
		if a == actionDiscard {
			rdis0++
		} else {
			rpdis0++
		}
	}
	// A run of only multi-match records never discards.
	if rdis0 == 0 {
		return false
	}

	rdis1, rpdis1 := 0, 1
	for r := 1; i+r <= end; r++ {
		a := acts[i+r]
		if a == actionKeep {
			break
		}
		if a == actionDiscard {
			rdis1++
		} else {
			rpdis1++
		}
	}
	if rdis1 == 0 {
		return false
	}
	rdis1 += rdis0
	rpdis1 += rpdis0

	return rpdis1*e.h.KeepDiscardRun < rpdis1+rdis1
}
