package lineclass

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// scanner yields the policy-filtered byte stream of a line. Hash and Match both consume it, so they agree by construction.
type scanner struct {
	line   []byte
	i      int
	end    int // bytes at or past end are not yielded
	ws     Whitespace
	skipCR int // index of a "\r" to drop, or -1
}

func newScanner(line []byte, p Policy) scanner {
	s := scanner{line: line, end: len(line), ws: p.Whitespace, skipCR: -1}
	if p.IgnoreCRAtEOL {
		n := len(line)
		switch {
		case n >= 2 && line[n-2] == '\r' && line[n-1] == '\n':
			s.skipCR = n - 2
		case n >= 1 && line[n-1] == '\r':
			s.skipCR = n - 1
		}
	}
	if s.ws == WhitespaceIgnoreChange || s.ws == WhitespaceIgnoreAtEOL {
		for s.end > 0 && IsSpace(line[s.end-1]) {
			s.end--
		}
	}
	return s
}

// next returns the next significant byte, or ok=false at the end of the line.
func (s *scanner) next() (byte, bool) {
	for s.i < s.end {
		c := s.line[s.i]
		if s.i == s.skipCR {
			s.i++
			continue
		}
		switch s.ws {
		case WhitespaceIgnoreAll:
			if IsSpace(c) {
				s.i++
				continue
			}
		case WhitespaceIgnoreChange:
			if IsSpace(c) {
				for s.i < s.end && IsSpace(s.line[s.i]) {
					s.i++
				}
				return ' ', true
			}
		}
		s.i++
		return c, true
	}
	return 0, false
}

// Hash returns an order-sensitive 64-bit FNV-1a hash of line under p. Lines that Match under p hash equally.
func Hash(line []byte, p Policy) uint64 {
	h := uint64(fnvOffset64)
	if p.Whitespace == WhitespaceExact && !p.IgnoreCRAtEOL {
		for _, c := range line {
			h ^= uint64(c)
			h *= fnvPrime64
		}
		return h
	}
	s := newScanner(line, p)
	for {
		c, ok := s.next()
		if !ok {
			return h
		}
		h ^= uint64(c)
		h *= fnvPrime64
	}
}

// Match reports whether a and b are equal under p.
func Match(a, b []byte, p Policy) bool {
	if p.Whitespace == WhitespaceExact && !p.IgnoreCRAtEOL {
		return string(a) == string(b)
	}
	sa, sb := newScanner(a, p), newScanner(b, p)
	for {
		ca, oka := sa.next()
		cb, okb := sb.next()
		if oka != okb || ca != cb {
			return false
		}
		if !oka {
			return true
		}
	}
}
