package pipeline

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns a key segment.
func KeySegment(k string) Segment {
	return Segment{Key: k}
}

// IndexSegment returns an index segment.
func IndexSegment(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path locates the current value within the enclosing input.
type Path []Segment

// Key returns a copy of p with k appended.
func (p Path) Key(k string) Path {
	return p.append(KeySegment(k))
}

// Index returns a copy of p with i appended.
func (p Path) Index(i int) Path {
	return p.append(IndexSegment(i))
}

// Join returns a copy of p followed by other.
func (p Path) Join(other Path) Path {
	out := make(Path, 0, len(p)+len(other))
	out = append(out, p...)
	return append(out, other...)
}

func (p Path) append(s Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// Strings returns the segments as strings, e.g. for error payloads.
func (p Path) Strings() []string {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.String()
	}
	return out
}

// String renders p as "a.b[2].c".
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}
