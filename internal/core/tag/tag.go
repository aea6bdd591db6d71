// Package tag defines tagged lines and their JSON lines wire encoding.
package tag

import "bytes"

// Range is a half-open byte range into a line's data.
type Range struct {
	Start int
	End   int
}

// Tag is a value extracted from, or attached to, a line. Synthetic tags have
// no range.
type Tag struct {
	Value string
	Range *Range
}

// New returns a tag covering data[start:end].
func New(value string, start, end int) Tag {
	return Tag{Value: value, Range: &Range{Start: start, End: end}}
}

// Synthetic returns a tag without a range.
func Synthetic(value string) Tag {
	return Tag{Value: value}
}

// WithValue replaces the value and keeps the range.
func (t Tag) WithValue(value string) Tag {
	t.Value = value
	return t
}

// Line is one unit of pipeline data with its tags. Data holds the raw bytes
// including the line terminator, if any.
type Line struct {
	Tags []Tag
	Data []byte
}

// Untagged wraps raw bytes without tags.
func Untagged(data []byte) Line {
	return Line{Data: data}
}

// HasTags reports whether the line carries at least one tag.
func (l Line) HasTags() bool {
	return len(l.Tags) > 0
}

// TrimTerminator strips one trailing \n or \r\n.
func TrimTerminator(b []byte) []byte {
	if bytes.HasSuffix(b, []byte("\r\n")) {
		return b[:len(b)-2]
	}
	if bytes.HasSuffix(b, []byte("\n")) {
		return b[:len(b)-1]
	}
	return b
}

// Replace substitutes every ranged tag in the data with the result of fn,
// which receives the tag and the bytes it covers. Later ranges shift as
// replacements change length. Tags out of ascending order or out of bounds
// are left alone.
func (l Line) Replace(fn func(t Tag, original []byte) string) []byte {
	out := make([]byte, 0, len(l.Data))
	last := 0
	for _, t := range l.Tags {
		if t.Range == nil || t.Range.Start < last || t.Range.End > len(l.Data) {
			continue
		}
		out = append(out, l.Data[last:t.Range.Start]...)
		out = append(out, fn(t, l.Data[t.Range.Start:t.Range.End])...)
		last = t.Range.End
	}
	return append(out, l.Data[last:]...)
}
