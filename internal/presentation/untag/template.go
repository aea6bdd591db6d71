// Package untag renders tagged lines back into plain text.
package untag

import (
	"strings"

	"github.com/pkg/errors"
)

// ItemKind is the kind of a template item.
type ItemKind int

const (
	ItemLiteral ItemKind = iota
	ItemTag
	ItemData
)

// Item is a literal or a directive of a compiled template.
type Item struct {
	Kind    ItemKind
	Literal string
}

// Template is a compiled -f/--format string.
type Template []Item

type state int

const (
	stateDefault state = iota
	stateInBrace
	stateBackslash
	stateBackslashInBrace
)

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	}
	return c
}

// Compile parses a template of literals and {tag}/{data} directives. A
// backslash escapes the next byte; \n and \t stand for newline and tab.
func Compile(s string) (Template, error) {
	var (
		items   Template
		literal strings.Builder
		name    strings.Builder
		st      = stateDefault
	)
	flush := func() {
		if literal.Len() > 0 {
			items = append(items, Item{Kind: ItemLiteral, Literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch st {
		case stateDefault:
			switch c {
			case '{':
				flush()
				st = stateInBrace
			case '\\':
				st = stateBackslash
			default:
				literal.WriteByte(c)
			}
		case stateInBrace:
			switch c {
			case '}':
				switch name.String() {
				case "tag":
					items = append(items, Item{Kind: ItemTag})
				case "data":
					items = append(items, Item{Kind: ItemData})
				default:
					return nil, errors.Errorf(
						"unrecognized format directive `{%s}`, allowed directives are `{tag}` and `{data}`", name.String())
				}
				name.Reset()
				st = stateDefault
			case '\\':
				st = stateBackslashInBrace
			default:
				name.WriteByte(c)
			}
		case stateBackslash:
			literal.WriteByte(unescape(c))
			st = stateDefault
		case stateBackslashInBrace:
			name.WriteByte(unescape(c))
			st = stateInBrace
		}
	}

	switch st {
	case stateInBrace:
		return nil, errors.New("found unclosed brace, which might be an invalid format directive " +
			"(to write a brace literally, escape it with a backslash)")
	case stateBackslash, stateBackslashInBrace:
		return nil, errors.New("found dangling backslash " +
			"(to write a backslash literally, escape it with a backslash)")
	}
	flush()
	return items, nil
}

// Render interpolates one tag value and the line data.
func (t Template) Render(value string, data []byte) []byte {
	var out []byte
	for _, it := range t {
		switch it.Kind {
		case ItemLiteral:
			out = append(out, it.Literal...)
		case ItemTag:
			out = append(out, value...)
		case ItemData:
			out = append(out, data...)
		}
	}
	return out
}
