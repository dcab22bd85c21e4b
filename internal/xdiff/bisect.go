package xdiff

import "math"

const lineMax = math.MaxInt

// split is a midpoint found by bisection. minLo/minHi say whether the lower and upper sub-boxes still need an exact minimum.
type split struct {
	i1, i2       int
	minLo, minHi bool
}

// box is a pending sub-problem: positions [off1, lim1) of the old reduced view against [off2, lim2) of the new one.
type box struct {
	off1, lim1 int
	off2, lim2 int
	needMin    bool
}

// bisector runs the Myers O(ND) midpoint search over the reduced views of an Env. kvdf and kvdb are indexed by diagonal plus off, since
// diagonals range over [-len(ha2)-1, len(ha1)+1].
type bisector struct {
	ha1, ha2   []int
	kvdf, kvdb []int
	off        int
	mxcost     int
	h          Heuristics
	stats      *Stats
}

// bisect marks the changed lines of e.old and e.new that lie inside the reduced views.
func (e *Env) bisect() {
	n1, n2 := len(e.old.ha), len(e.new.ha)
	ndiags := n1 + n2 + 3
	b := &bisector{
		ha1:    e.old.ha,
		ha2:    e.new.ha,
		kvdf:   make([]int, ndiags),
		kvdb:   make([]int, ndiags),
		off:    n2 + 1,
		mxcost: max(bogosqrt(ndiags), e.h.MaxCostFloor),
		h:      e.h,
		stats:  &e.stats,
	}

	// Pending boxes are processed from an explicit stack, so stack depth does not grow with the input.
	stack := []box{{0, n1, 0, n2, e.opts.NeedMinimal}}
	for len(stack) > 0 {
		bx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		off1, lim1, off2, lim2 := bx.off1, bx.lim1, bx.off2, bx.lim2

		// Shrink the box by walking the snakes at both corners.
		for off1 < lim1 && off2 < lim2 && b.ha1[off1] == b.ha2[off2] {
			off1++
			off2++
		}
		for off1 < lim1 && off2 < lim2 && b.ha1[lim1-1] == b.ha2[lim2-1] {
			lim1--
			lim2--
		}

		switch {
		case off1 == lim1:
			for ; off2 < lim2; off2++ {
				e.new.setChanged(e.new.rindex[off2], true)
			}
		case off2 == lim2:
			for ; off1 < lim1; off1++ {
				e.old.setChanged(e.old.rindex[off1], true)
			}
		default:
			spl := b.split(off1, lim1, off2, lim2, bx.needMin)
			stack = append(stack,
				box{spl.i1, lim1, spl.i2, lim2, spl.minHi},
				box{off1, spl.i1, off2, spl.i2, spl.minLo},
			)
		}
	}
}

// split finds a midpoint of the box. It searches forward from (off1, off2) and backward from (lim1, lim2) one edit at a time until the two
// frontiers meet. Unless needMin is set, it gives up early with a good-enough split once the cost gets too high.
func (b *bisector) split(off1, lim1, off2, lim2 int, needMin bool) split {
	ha1, ha2 := b.ha1, b.ha2
	kvdf, kvdb, o := b.kvdf, b.kvdb, b.off
	snakeCnt := b.h.SnakeCount

	dmin, dmax := off1-lim2, lim1-off2
	fmid, bmid := off1-off2, lim1-lim2
	odd := (fmid-bmid)&1 != 0
	fmin, fmax := fmid, fmid
	bmin, bmax := bmid, bmid

	kvdf[o+fmid] = off1
	kvdb[o+bmid] = lim1

	b.stats.Splits++
	b.stats.CostCeiling = max(b.stats.CostCeiling, b.mxcost)

	for ec := 1; ; ec++ {
		b.stats.MaxCost = max(b.stats.MaxCost, ec)
		gotSnake := false

		// Extend the forward domain by one diagonal each way, or pull it in where it would leave the box. The outer K values are primed so the
		// inner loop needs no bounds checks.
		if fmin > dmin {
			fmin--
			kvdf[o+fmin-1] = -1
		} else {
			fmin++
		}
		if fmax < dmax {
			fmax++
			kvdf[o+fmax+1] = -1
		} else {
			fmax--
		}

		for d := fmax; d >= fmin; d -= 2 {
			var i1 int
			if kvdf[o+d-1] >= kvdf[o+d+1] {
				i1 = kvdf[o+d-1] + 1
			} else {
				i1 = kvdf[o+d+1]
			}
			prev1 := i1
			i2 := i1 - d
			for i1 < lim1 && i2 < lim2 && ha1[i1] == ha2[i2] {
				i1++
				i2++
			}
			if i1-prev1 > snakeCnt {
				gotSnake = true
			}
			kvdf[o+d] = i1
			if odd && bmin <= d && d <= bmax && kvdb[o+d] <= i1 {
				return split{i1: i1, i2: i2, minLo: true, minHi: true}
			}
		}

		if bmin > dmin {
			bmin--
			kvdb[o+bmin-1] = lineMax
		} else {
			bmin++
		}
		if bmax < dmax {
			bmax++
			kvdb[o+bmax+1] = lineMax
		} else {
			bmax--
		}

		for d := bmax; d >= bmin; d -= 2 {
			var i1 int
			if kvdb[o+d-1] < kvdb[o+d+1] {
				i1 = kvdb[o+d-1]
			} else {
				i1 = kvdb[o+d+1] - 1
			}
			prev1 := i1
			i2 := i1 - d
			for i1 > off1 && i2 > off2 && ha1[i1-1] == ha2[i2-1] {
				i1--
				i2--
			}
			if prev1-i1 > snakeCnt {
				gotSnake = true
			}
			kvdb[o+d] = i1
			if !odd && fmin <= d && d <= fmax && i1 <= kvdf[o+d] {
				return split{i1: i1, i2: i2, minLo: true, minHi: true}
			}
		}

		if needMin {
			continue
		}

		// Past the heuristic trigger and having seen a long snake, sample the frontiers for a diagonal that reached far (measured from the
		// corner, penalized by distance from the middle diagonal) and ends in a snake of its own.
		if gotSnake && ec > b.h.HeurMinCost {
			if spl, ok := b.goodForward(ec, fmin, fmax, fmid, off1, lim1, off2, lim2); ok {
				return spl
			}
			if spl, ok := b.goodBackward(ec, bmin, bmax, bmid, off1, lim1, off2, lim2); ok {
				return spl
			}
		}

		// Enough is enough: take the furthest-reaching path by i1+i2.
		if ec >= b.mxcost {
			return b.furthest(fmin, fmax, bmin, bmax, off1, lim1, off2, lim2)
		}
	}
}

func (b *bisector) goodForward(ec, fmin, fmax, fmid, off1, lim1, off2, lim2 int) (split, bool) {
	ha1, ha2, kvdf, o := b.ha1, b.ha2, b.kvdf, b.off
	snakeCnt := b.h.SnakeCount
	var spl split
	best := 0
	for d := fmax; d >= fmin; d -= 2 {
		dd := d - fmid
		if dd < 0 {
			dd = -dd
		}
		i1 := kvdf[o+d]
		i2 := i1 - d
		v := (i1 - off1) + (i2 - off2) - dd

		if v > b.h.KHeur*ec && v > best &&
			off1+snakeCnt <= i1 && i1 < lim1 &&
			off2+snakeCnt <= i2 && i2 < lim2 {
			for k := 1; ha1[i1-k] == ha2[i2-k]; k++ {
				if k == snakeCnt {
					best = v
					spl.i1, spl.i2 = i1, i2
					break
				}
			}
		}
	}
	if best == 0 {
		return split{}, false
	}
	spl.minLo, spl.minHi = true, false
	return spl, true
}

func (b *bisector) goodBackward(ec, bmin, bmax, bmid, off1, lim1, off2, lim2 int) (split, bool) {
	ha1, ha2, kvdb, o := b.ha1, b.ha2, b.kvdb, b.off
	snakeCnt := b.h.SnakeCount
	var spl split
	best := 0
	for d := bmax; d >= bmin; d -= 2 {
		dd := d - bmid
		if dd < 0 {
			dd = -dd
		}
		i1 := kvdb[o+d]
		i2 := i1 - d
		v := (lim1 - i1) + (lim2 - i2) - dd

		if v > b.h.KHeur*ec && v > best &&
			off1 < i1 && i1 <= lim1-snakeCnt &&
			off2 < i2 && i2 <= lim2-snakeCnt {
			for k := 0; ha1[i1+k] == ha2[i2+k]; k++ {
				if k == snakeCnt-1 {
					best = v
					spl.i1, spl.i2 = i1, i2
					break
				}
			}
		}
	}
	if best == 0 {
		return split{}, false
	}
	spl.minLo, spl.minHi = false, true
	return spl, true
}

func (b *bisector) furthest(fmin, fmax, bmin, bmax, off1, lim1, off2, lim2 int) split {
	kvdf, kvdb, o := b.kvdf, b.kvdb, b.off

	fbest, fbest1 := -1, -1
	for d := fmax; d >= fmin; d -= 2 {
		i1 := min(kvdf[o+d], lim1)
		i2 := i1 - d
		if lim2 < i2 {
			i1, i2 = lim2+d, lim2
		}
		if fbest < i1+i2 {
			fbest = i1 + i2
			fbest1 = i1
		}
	}

	bbest, bbest1 := lineMax, lineMax
	for d := bmax; d >= bmin; d -= 2 {
		i1 := max(off1, kvdb[o+d])
		i2 := i1 - d
		if i2 < off2 {
			i1, i2 = off2+d, off2
		}
		if i1+i2 < bbest {
			bbest = i1 + i2
			bbest1 = i1
		}
	}

	if (lim1+lim2)-bbest < fbest-(off1+off2) {
		return split{i1: fbest1, i2: fbest - fbest1, minLo: true, minHi: false}
	}
	return split{i1: bbest1, i2: bbest - bbest1, minLo: false, minHi: true}
}
