package lineclass

// Classifier assigns equivalence-class ids to lines. It is not safe for concurrent use.
type Classifier struct {
	policy  Policy
	buckets map[uint64][]int // hash -> class ids with that hash
	reps    [][]byte         // class id -> representative line
}

// NewClassifier returns an empty classifier. sizeHint is the expected number of distinct lines.
func NewClassifier(p Policy, sizeHint int) *Classifier {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Classifier{
		policy:  p,
		buckets: make(map[uint64][]int, sizeHint),
		reps:    make([][]byte, 0, sizeHint),
	}
}

// Policy returns the comparison policy c was created with.
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Len returns the number of classes handed out so far. Every id returned by c is in [0, Len()).
func (c *Classifier) Len() int {
	return len(c.reps)
}

// ClassOf returns the class id of line, creating a new class if no equal line has been seen.
func (c *Classifier) ClassOf(line []byte) (int, uint64) {
	h := Hash(line, c.policy)
	for _, id := range c.buckets[h] {
		if Match(c.reps[id], line, c.policy) {
			return id, h
		}
	}
	id := len(c.reps)
	c.reps = append(c.reps, line)
	c.buckets[h] = append(c.buckets[h], id)
	return id, h
}

// Classify splits buf into records and classifies each one. The returned records borrow from buf.
func (c *Classifier) Classify(buf []byte) []Record {
	lines := SplitLines(buf)
	recs := make([]Record, len(lines))
	for i, line := range lines {
		id, h := c.ClassOf(line)
		recs[i] = Record{Line: line, Hash: h, Class: id}
	}
	return recs
}

// Classify is a convenience for classifying a single buffer with a fresh classifier.
func Classify(buf []byte, p Policy) ([]Record, *Classifier) {
	c := NewClassifier(p, CountLines(buf))
	return c.Classify(buf), c
}
