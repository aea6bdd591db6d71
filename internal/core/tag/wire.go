package tag

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type wireTag struct {
	Value string `json:"value"`
	Range []int  `json:"range,omitempty"`
}

type wireData struct {
	Text  *string `json:"text,omitempty"`
	Bytes *string `json:"bytes,omitempty"`
}

type wireLine struct {
	Tags []wireTag      `json:"tags,omitempty"`
	Data json.RawMessage `json:"data"`
}

// strictAPI rejects unknown keys at the top level and in tag objects. The data
// object is decoded separately with the lenient default API.
var strictAPI = sonic.Config{DisallowUnknownFields: true}.Froze()

// IsWire reports whether a raw input line should be read as wire protocol.
func IsWire(b []byte) bool {
	return len(b) > 0 && b[0] == '{'
}

// Encode renders l as one JSON object followed by a newline.
func Encode(l Line) ([]byte, error) {
	var data wireData
	if utf8.Valid(l.Data) {
		text := string(l.Data)
		data.Text = &text
	} else {
		escaped := EscapeBytes(l.Data)
		data.Bytes = &escaped
	}
	rawData, err := sonic.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode line data")
	}

	out := wireLine{Data: rawData}
	for _, t := range l.Tags {
		wt := wireTag{Value: strings.ToValidUTF8(t.Value, "�")}
		if t.Range != nil {
			wt.Range = []int{t.Range.Start, t.Range.End}
		}
		out.Tags = append(out.Tags, wt)
	}

	b, err := sonic.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode tagged line")
	}
	return append(b, '\n'), nil
}

// Decode parses one wire line. Trailing whitespace is ignored.
func Decode(b []byte) (Line, error) {
	var wl wireLine
	if err := strictAPI.Unmarshal(b, &wl); err != nil {
		return Line{}, errors.Wrap(err, "failed to decode tagged line")
	}
	if len(wl.Data) == 0 || string(wl.Data) == "null" {
		return Line{}, errors.New("failed to decode tagged line: missing field `data`")
	}

	var data wireData
	if err := sonic.Unmarshal(wl.Data, &data); err != nil {
		return Line{}, errors.Wrap(err, "failed to decode `data` of tagged line")
	}

	var l Line
	switch {
	case data.Text != nil:
		l.Data = []byte(*data.Text)
	case data.Bytes != nil:
		raw, err := UnescapeBytes(*data.Bytes)
		if err != nil {
			return Line{}, errors.Wrap(err, "failed to decode `data.bytes` of tagged line")
		}
		l.Data = raw
	default:
		return Line{}, errors.New("failed to decode tagged line: `data` requires `text` or `bytes`")
	}

	for _, wt := range wl.Tags {
		t := Tag{Value: wt.Value}
		if wt.Range != nil {
			if len(wt.Range) != 2 || wt.Range[0] < 0 || wt.Range[0] > wt.Range[1] {
				return Line{}, errors.Errorf("failed to decode tagged line: invalid range %v", wt.Range)
			}
			t.Range = &Range{Start: wt.Range[0], End: wt.Range[1]}
		}
		l.Tags = append(l.Tags, t)
	}
	return l, nil
}
