package xdiff

import "github.com/codalotl/textmerge/internal/lineclass"

// File is one classified side of a diff: its records, the per-line changed flags, and the reduced view used by bisection.
type File struct {
	recs []lineclass.Record

	// changed has a false sentinel at each end: changed[i+1] is the flag of line i, and lines -1 and len(recs) read as unchanged.
	changed []bool

	// rindex maps positions in the reduced view to line numbers; ha holds the class ids of those lines.
	rindex []int
	ha     []int

	// dstart and dend bound (inclusively) the lines left after trimming the common prefix and suffix.
	dstart, dend int
}

func newFile(recs []lineclass.Record) File {
	return File{
		recs:    recs,
		changed: make([]bool, len(recs)+2),
		dstart:  0,
		dend:    len(recs) - 1,
	}
}

// Len returns the number of lines.
func (f *File) Len() int {
	return len(f.recs)
}

// Line returns line i, including its trailing newline if any.
func (f *File) Line(i int) []byte {
	return f.recs[i].Line
}

// Record returns record i.
func (f *File) Record(i int) lineclass.Record {
	return f.recs[i]
}

// Records returns all records. Callers must not modify the returned slice.
func (f *File) Records() []lineclass.Record {
	return f.recs
}

// Changed reports whether line i is marked changed. Out-of-range lines report false.
func (f *File) Changed(i int) bool {
	if i < -1 || i > len(f.recs) {
		return false
	}
	return f.changed[i+1]
}

// ChangedCount returns the number of lines marked changed.
func (f *File) ChangedCount() int {
	n := 0
	for _, c := range f.changed {
		if c {
			n++
		}
	}
	return n
}

func (f *File) isChanged(i int) bool {
	return f.changed[i+1]
}

func (f *File) setChanged(i int, v bool) {
	f.changed[i+1] = v
}

func (f *File) class(i int) int {
	return f.recs[i].Class
}
