// Package emit turns an edit script into hunks: groups of nearby changes surrounded by context lines, optionally labeled with the enclosing
// function. Output goes to a Sink, one call per hunk header and per line.
package emit

import (
	"fmt"

	"github.com/codalotl/textmerge/internal/q/uni"
	"github.com/codalotl/textmerge/internal/xdiff"
)

// DefaultFuncBufSize is the default display width kept of a hunk's function text.
const DefaultFuncBufSize = 80

// Sink receives emitted hunks. Lines are passed with their trailing newline, if any, and are only valid for the duration of the call.
// A non-nil error from any method stops emission.
type Sink interface {
	Hunk(h HunkHeader) error
	Context(line []byte) error
	Delete(line []byte) error
	Insert(line []byte) error
}

// Config controls hunk grouping and labeling.
type Config struct {
	Context          int // unchanged lines shown around each change
	InterHunkContext int // hunks whose context would be separated by at most this many lines are joined

	FuncNames   bool        // label hunk headers with the nearest preceding function line
	FuncContext bool        // widen hunks to cover their whole enclosing function
	FuncMatcher FuncMatcher // nil means DefaultFuncMatcher
	FuncBufSize int         // display width kept of function text; 0 means DefaultFuncBufSize
}

func (c Config) matcher() FuncMatcher {
	if c.FuncMatcher == nil {
		return DefaultFuncMatcher
	}
	return c.FuncMatcher
}

func (c Config) funcBufSize() int {
	if c.FuncBufSize <= 0 {
		return DefaultFuncBufSize
	}
	return c.FuncBufSize
}

// hunkEnd returns the index of the last change to include in a hunk that starts at or after first, along with the (possibly advanced) first
// change. Ignorable changes are dropped when they are too far from real ones. It returns first == len(script) if nothing is left to emit.
func hunkEnd(script xdiff.Script, first int, cfg Config) (int, int) {
	maxCommon := 2*cfg.Context + cfg.InterHunkContext
	maxIgnorable := cfg.Context

	// Drop ignorable changes that are too far before other changes.
	for p := first; p < len(script) && script[p].Ignore; p++ {
		if p+1 == len(script) || script[p+1].Old-(script[p].Old+script[p].OldCount) >= maxIgnorable {
			first = p + 1
		}
	}
	if first >= len(script) {
		return first, -1
	}

	last := first
	ignored := 0 // blank lines in ignorable changes seen since last
loop:
	for p, x := first, first+1; x < len(script); p, x = x, x+1 {
		prev, cur := script[p], script[x]
		distance := cur.Old - (prev.Old + prev.OldCount)
		if distance > maxCommon {
			break
		}

		switch {
		case distance < maxIgnorable && (!cur.Ignore || last == p):
			last = x
			ignored = 0
		case distance < maxIgnorable && cur.Ignore:
			ignored += cur.NewCount
		case last != p && cur.Old+ignored-(script[last].Old+script[last].OldCount) > maxCommon:
			break loop
		case !cur.Ignore:
			last = x
			ignored = 0
		default:
			ignored += cur.NewCount
		}
	}
	return first, last
}

type emitter struct {
	old, new *xdiff.File
	cfg      Config
	match    FuncMatcher
	sink     Sink
}

// funcLine scans old-file lines from start toward limit (exclusive, either direction) for a function line. It returns -1 if none is found.
func (e *emitter) funcLine(start, limit int) (int, string) {
	step := 1
	if start > limit {
		step = -1
	}
	for l := start; l != limit && l >= 0 && l < e.old.Len(); l += step {
		if text, ok := e.match(e.old.Line(l)); ok {
			return l, text
		}
	}
	return -1, ""
}

// Emit walks script and reports hunks to sink. env must be the environment script was computed from.
func Emit(env *xdiff.Env, script xdiff.Script, cfg Config, sink Sink) error {
	e := &emitter{old: env.Old(), new: env.New(), cfg: cfg, match: cfg.matcher(), sink: sink}
	ctx := cfg.Context
	nrec1, nrec2 := e.old.Len(), e.new.Len()

	funcLinePrev := -1
	funcText := ""

	for i := 0; i < len(script); {
		first, last := hunkEnd(script, i, cfg)
		if last < 0 {
			break
		}
		xch := script[first]

		s1 := max(xch.Old-ctx, 0)
		s2 := max(xch.New-ctx, 0)

		if cfg.FuncContext {
			fs1, _ := e.funcLine(xch.Old, -1)
			if fs1 < 0 {
				fs1 = 0
			}
			if fs1 < s1 {
				s2 -= s1 - fs1
				s1 = fs1
			}
		}

		var e1, e2 int
		for {
			xche := script[last]
			lctx := min(ctx, nrec1-(xche.Old+xche.OldCount), nrec2-(xche.New+xche.NewCount))
			e1 = xche.Old + xche.OldCount + lctx
			e2 = xche.New + xche.NewCount + lctx

			if !cfg.FuncContext {
				break
			}
			fe1, _ := e.funcLine(xche.Old+xche.OldCount, nrec1)
			if fe1 < 0 {
				fe1 = nrec1
			}
			if fe1 > e1 {
				e2 += fe1 - e1
				e1 = fe1
			}

			// If the next change overlaps the widened hunk, or no function starts before it, take it in and find the new end.
			if last+1 < len(script) {
				l := script[last+1].Old
				if l <= e1 {
					last++
					continue
				}
				if fl, _ := e.funcLine(l, e1); fl < 0 {
					last++
					continue
				}
			}
			break
		}

		if cfg.FuncNames {
			// Only look back as far as the previous hunk's start; otherwise keep the previous hunk's label.
			if l, text := e.funcLine(s1-1, funcLinePrev); l >= 0 {
				funcText = uni.Truncate(text, cfg.funcBufSize(), nil)
			}
			funcLinePrev = s1 - 1
		}

		if err := e.emitHunk(script[first:last+1], s1, s2, e1, e2, funcText); err != nil {
			return err
		}
		i = last + 1
	}
	return nil
}

func (e *emitter) emitHunk(changes xdiff.Script, s1, s2, e1, e2 int, funcText string) error {
	hdr := HunkHeader{OldStart: s1 + 1, OldCount: e1 - s1, NewStart: s2 + 1, NewCount: e2 - s2, Func: funcText}
	if err := e.sink.Hunk(hdr); err != nil {
		return fmt.Errorf("emit hunk header: %w", err)
	}

	// Pre-context, then each change with the unchanged lines between changes. Context comes from the new file.
	for ; s2 < changes[0].New; s2++ {
		if err := e.sink.Context(e.new.Line(s2)); err != nil {
			return fmt.Errorf("emit context: %w", err)
		}
	}
	for k, c := range changes {
		if k > 0 {
			prev := changes[k-1]
			for j := prev.New + prev.NewCount; j < c.New; j++ {
				if err := e.sink.Context(e.new.Line(j)); err != nil {
					return fmt.Errorf("emit context: %w", err)
				}
			}
		}
		for j := c.Old; j < c.Old+c.OldCount; j++ {
			if err := e.sink.Delete(e.old.Line(j)); err != nil {
				return fmt.Errorf("emit delete: %w", err)
			}
		}
		for j := c.New; j < c.New+c.NewCount; j++ {
			if err := e.sink.Insert(e.new.Line(j)); err != nil {
				return fmt.Errorf("emit insert: %w", err)
			}
		}
	}

	// Post-context.
	last := changes[len(changes)-1]
	for j := last.New + last.NewCount; j < e2; j++ {
		if err := e.sink.Context(e.new.Line(j)); err != nil {
			return fmt.Errorf("emit context: %w", err)
		}
	}
	return nil
}

// EmitCommon calls fn with every line of the new file that the script leaves unchanged, in order.
func EmitCommon(env *xdiff.Env, script xdiff.Script, fn func(line []byte) error) error {
	f := env.New()
	next := 0
	for _, c := range script {
		for ; next < c.New; next++ {
			if err := fn(f.Line(next)); err != nil {
				return err
			}
		}
		next = c.New + c.NewCount
	}
	for ; next < f.Len(); next++ {
		if err := fn(f.Line(next)); err != nil {
			return err
		}
	}
	return nil
}
