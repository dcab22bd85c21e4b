// Package xdiff computes line-oriented edit scripts between two buffers.
//
// The pipeline is: classify lines into equivalence classes (package lineclass), trim the common prefix and suffix, discard lines that cannot
// match, find a minimal (or, under the cost heuristics, near-minimal) edit path with Myers' bisecting O(ND) search, slide change groups into
// their most readable position, and collect the changed runs into a Script.
//
// Internal consistency failures panic with a message starting with "xdiff: BUG:". They indicate a defect in this package, never bad input.
package xdiff

import (
	"bytes"

	"github.com/codalotl/textmerge/internal/lineclass"
)

// Diff computes the edit script from old to new with a fresh classifier.
func Diff(old, new []byte, opts Options) (*Env, Script, error) {
	c := lineclass.NewClassifier(opts.Policy, lineclass.CountLines(old)+lineclass.CountLines(new))
	return Compute(c, old, new, opts)
}

// Compute computes the edit script from old to new, classifying both with c. c's policy takes precedence over opts.Policy.
func Compute(c *lineclass.Classifier, old, new []byte, opts Options) (*Env, Script, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	if err := opts.CheckSize(old, new); err != nil {
		return nil, nil, err
	}
	opts.Policy = c.Policy()
	if opts.TrimCommonTail {
		old, new = trimCommonTail(old, new)
	}
	env, script := ComputeRecords(c.Classify(old), c.Classify(new), c.Len(), opts)
	return env, script, nil
}

// ComputeRecords computes the edit script between already-classified records. classes must exceed every class id in old and new (normally the
// classifier's Len). opts is assumed valid.
func ComputeRecords(old, new []lineclass.Record, classes int, opts Options) (*Env, Script) {
	env := newEnv(old, new, classes, opts)
	env.bisect()
	env.compact()
	script := env.buildScript()
	if opts.IgnoreBlankLines {
		env.markIgnorable(script)
	}
	return env, script
}

// trimCommonTail drops the longest common suffix of a and b that consists of whole lines in both.
func trimCommonTail(a, b []byte) ([]byte, []byte) {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	if n == 0 {
		return a, b
	}
	atLineStart := func(buf []byte, pos int) bool {
		return pos == 0 || buf[pos-1] == '\n'
	}
	if atLineStart(a, len(a)-n) && atLineStart(b, len(b)-n) {
		return a[:len(a)-n], b[:len(b)-n]
	}

	// Otherwise cut just after the first newline inside the shared suffix, if there is one.
	suffix := a[len(a)-n:]
	k := bytes.IndexByte(suffix, '\n')
	if k < 0 {
		return a, b
	}
	k++
	return a[:len(a)-n+k], b[:len(b)-n+k]
}
