package tag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want string
	}{
		{
			name: "untagged",
			line: Untagged([]byte("hello\n")),
			want: `{"data":{"text":"hello\n"}}` + "\n",
		},
		{
			name: "ranged tag",
			line: Line{
				Tags: []Tag{New("2025-03-15T00-04", 0, 16)},
				Data: []byte("2025-03-15T00-04 Springsteen\n"),
			},
			want: `{"tags":[{"value":"2025-03-15T00-04","range":[0,16]}],"data":{"text":"2025-03-15T00-04 Springsteen\n"}}` + "\n",
		},
		{
			name: "synthetic tag",
			line: Line{Tags: []Tag{Synthetic("UTC")}, Data: []byte("x")},
			want: `{"tags":[{"value":"UTC"}],"data":{"text":"x"}}` + "\n",
		},
		{
			name: "invalid utf-8",
			line: Untagged([]byte("a\xffb\\\n")),
			want: `{"data":{"bytes":"a\\xFFb\\\\\\n"}}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	lines := []Line{
		Untagged([]byte("plain text without newline")),
		Untagged([]byte("bytes \x00\x01\xfe\r\n")),
		{Tags: []Tag{New("a", 0, 1), Synthetic("b")}, Data: []byte("a b\n")},
	}

	for _, l := range lines {
		encoded, err := Encode(l)
		require.NoError(t, err)
		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, l.Data, decoded.Data)
		assert.Equal(t, l.Tags, decoded.Tags)
	}
}

func TestDecode(t *testing.T) {
	l, err := Decode([]byte(`{"data":{"text":"x","extra":true}}`))
	require.NoError(t, err)
	assert.Equal(t, "x", string(l.Data))
	assert.False(t, l.HasTags())

	l, err = Decode([]byte(`{"tags":[{"value":"v","range":[2,3]}],"data":{"text":"x y\n"}}` + "\n"))
	require.NoError(t, err)
	require.Len(t, l.Tags, 1)
	assert.Equal(t, &Range{Start: 2, End: 3}, l.Tags[0].Range)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"data":`},
		{"unknown top-level key", `{"data":{"text":"x"},"extra":1}`},
		{"unknown tag key", `{"tags":[{"value":"v","extra":1}],"data":{"text":"x"}}`},
		{"missing data", `{"tags":[]}`},
		{"empty data", `{"data":{}}`},
		{"bad range", `{"tags":[{"value":"v","range":[3,1]}],"data":{"text":"x"}}`},
		{"bad escape", `{"data":{"bytes":"\\q"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestEscapeBytes(t *testing.T) {
	assert.Equal(t, `tab\there\0 \x01\xFF é`, EscapeBytes([]byte("tab\there\x00 \x01\xff é")))

	raw, err := UnescapeBytes(`tab\there\0 \x01\xFF é`)
	require.NoError(t, err)
	assert.Equal(t, []byte("tab\there\x00 \x01\xff é"), raw)

	_, err = UnescapeBytes(`trailing\`)
	assert.Error(t, err)
	_, err = UnescapeBytes(`\x1`)
	assert.Error(t, err)
	_, err = UnescapeBytes(`\xZZ`)
	assert.Error(t, err)
}

func TestReplace(t *testing.T) {
	l := Line{
		Tags: []Tag{New("LONGER", 0, 1), Synthetic("ignored"), New("", 4, 7)},
		Data: []byte("a b cde f\n"),
	}
	value := func(t Tag, _ []byte) string { return t.Value }
	assert.Equal(t, "LONGER b  f\n", string(l.Replace(value)))
	upper := func(_ Tag, original []byte) string { return strings.ToUpper(string(original)) }
	assert.Equal(t, "A b CDE f\n", string(l.Replace(upper)))
	assert.Equal(t, "a b cde f", string(TrimTerminator(l.Data)))
	assert.Equal(t, "x", string(TrimTerminator([]byte("x\r\n"))))
}

func TestIsWire(t *testing.T) {
	assert.True(t, IsWire([]byte(`{"data":{}}`)))
	assert.False(t, IsWire([]byte(" {")))
	assert.False(t, IsWire(nil))
}
