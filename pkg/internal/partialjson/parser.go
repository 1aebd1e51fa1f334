package partialjson

import (
	"unicode/utf8"
)

// Parser handles incomplete JSON parsing.
//
// Unlike a repairing parser it never invents content: a truncated string is
// closed at the last byte that is safe to show, while truncated numbers,
// literals, and keys are dropped until the rest of them arrives.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse repairs a JSON prefix into valid JSON. It returns a *SyntaxError when
// data is not the prefix of any valid JSON document.
func (p *Parser) Parse(data []byte) (*ParseResult, error) {
	jp := &jsonParser{data: data}
	return jp.parse()
}

type jsonParser struct {
	data []byte
	pos  int

	// Result tracking
	incomplete [][]string
	path       []string
}

func (p *jsonParser) parse() (*ParseResult, error) {
	repaired, truncatedAt, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	if truncatedAt == TruncNone {
		p.skipWhitespace()
		if p.pos < len(p.data) {
			return nil, syntaxErrorf(p.pos, "invalid character %q after top-level value", p.data[p.pos])
		}
	}

	return &ParseResult{
		Repaired:    repaired,
		Incomplete:  p.incomplete,
		TruncatedAt: truncatedAt,
	}, nil
}

// parseValue parses any JSON value. A nil result with a truncation means the
// value has not progressed far enough to show anything.
func (p *jsonParser) parseValue() ([]byte, Truncation, error) {
	p.skipWhitespace()

	if p.pos >= len(p.data) {
		p.markIncomplete()
		return nil, TruncValue, nil
	}

	switch ch := p.data[p.pos]; {
	case ch == '{':
		return p.parseObject()
	case ch == '[':
		return p.parseArray()
	case ch == '"':
		return p.parseString()
	case ch == 't' || ch == 'f' || ch == 'n':
		return p.parseLiteral()
	case ch == '-' || isDigit(ch):
		return p.parseNumber()
	default:
		return nil, "", syntaxErrorf(p.pos, "invalid character %q looking for beginning of value", ch)
	}
}

func (p *jsonParser) parseObject() ([]byte, Truncation, error) {
	result := []byte{'{'}
	p.pos++ // consume '{'
	first := true

	for {
		p.skipWhitespace()

		if p.pos >= len(p.data) {
			return append(result, '}'), TruncObject, nil
		}

		if p.data[p.pos] == '}' {
			p.pos++
			return append(result, '}'), TruncNone, nil
		}

		if !first {
			if p.data[p.pos] != ',' {
				return nil, "", syntaxErrorf(p.pos, "invalid character %q after object key:value pair", p.data[p.pos])
			}
			p.pos++ // consume ','
			p.skipWhitespace()
			if p.pos >= len(p.data) {
				return append(result, '}'), TruncKey, nil
			}
		}
		first = false

		if p.data[p.pos] != '"' {
			return nil, "", syntaxErrorf(p.pos, "invalid character %q looking for beginning of object key string", p.data[p.pos])
		}

		keyBytes, keyTrunc, err := p.parseString()
		if err != nil {
			return nil, "", err
		}
		if keyTrunc != TruncNone {
			// The key is still being written; nothing after it is usable.
			return append(result, '}'), TruncKey, nil
		}

		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return append(result, '}'), TruncKey, nil
		}
		if p.data[p.pos] != ':' {
			return nil, "", syntaxErrorf(p.pos, "invalid character %q after object key", p.data[p.pos])
		}
		p.pos++ // consume ':'

		p.path = append(p.path, string(keyBytes[1:len(keyBytes)-1]))
		valueBytes, valueTrunc, err := p.parseValue()
		p.path = p.path[:len(p.path)-1]
		if err != nil {
			return nil, "", err
		}

		if valueBytes != nil {
			if len(result) > 1 {
				result = append(result, ',')
			}
			result = append(result, keyBytes...)
			result = append(result, ':')
			result = append(result, valueBytes...)
		}

		if valueTrunc != TruncNone {
			return append(result, '}'), nested(valueTrunc), nil
		}
	}
}

func (p *jsonParser) parseArray() ([]byte, Truncation, error) {
	result := []byte{'['}
	p.pos++ // consume '['
	first := true
	index := 0

	for {
		p.skipWhitespace()

		if p.pos >= len(p.data) {
			return append(result, ']'), TruncArray, nil
		}

		if p.data[p.pos] == ']' {
			p.pos++
			return append(result, ']'), TruncNone, nil
		}

		if !first {
			if p.data[p.pos] != ',' {
				return nil, "", syntaxErrorf(p.pos, "invalid character %q after array element", p.data[p.pos])
			}
			p.pos++ // consume ','
			p.skipWhitespace()
			if p.pos >= len(p.data) {
				return append(result, ']'), TruncArray, nil
			}
			if p.data[p.pos] == ']' {
				return nil, "", syntaxErrorf(p.pos, "invalid character ']' after ','")
			}
		}
		first = false

		p.path = append(p.path, indexPath(index))
		valueBytes, valueTrunc, err := p.parseValue()
		p.path = p.path[:len(p.path)-1]
		if err != nil {
			return nil, "", err
		}

		if valueBytes != nil {
			if len(result) > 1 {
				result = append(result, ',')
			}
			result = append(result, valueBytes...)
		}
		index++

		if valueTrunc != TruncNone {
			return append(result, ']'), nested(valueTrunc), nil
		}
	}
}

func (p *jsonParser) parseString() ([]byte, Truncation, error) {
	start := p.pos
	p.pos++ // consume opening '"'

	for p.pos < len(p.data) {
		ch := p.data[p.pos]

		switch {
		case ch == '"':
			p.pos++ // consume closing '"'
			return p.data[start:p.pos], TruncNone, nil

		case ch == '\\':
			escStart := p.pos
			if p.pos+1 >= len(p.data) {
				return p.truncateString(start, escStart), TruncString, nil
			}
			switch esc := p.data[p.pos+1]; esc {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				p.pos += 2
			case 'u':
				r, complete, err := p.readHex4(p.pos + 2)
				if err != nil {
					return nil, "", err
				}
				if !complete {
					return p.truncateString(start, escStart), TruncString, nil
				}
				p.pos += 6
				// A high surrogate decodes differently once its low half
				// arrives, so hold it back until we can see what follows.
				if r >= 0xD800 && r < 0xDC00 && p.lowSurrogatePending() {
					return p.truncateString(start, escStart), TruncString, nil
				}
			default:
				return nil, "", syntaxErrorf(p.pos+1, "invalid character %q in string escape code", esc)
			}

		case ch < 0x20:
			return nil, "", syntaxErrorf(p.pos, "invalid character %q in string literal", ch)

		default:
			if !utf8.FullRune(p.data[p.pos:]) {
				// Multi-byte character split across chunks.
				return p.truncateString(start, p.pos), TruncString, nil
			}
			_, size := utf8.DecodeRune(p.data[p.pos:])
			p.pos += size
		}
	}

	return p.truncateString(start, p.pos), TruncString, nil
}

// truncateString closes the string literal that began at start, keeping only
// the bytes before cut. The copy keeps the caller's buffer untouched.
func (p *jsonParser) truncateString(start, cut int) []byte {
	p.markIncomplete()
	p.pos = len(p.data)
	out := make([]byte, 0, cut-start+1)
	out = append(out, p.data[start:cut]...)
	return append(out, '"')
}

// readHex4 decodes the four hex digits starting at i.
func (p *jsonParser) readHex4(i int) (rune, bool, error) {
	var r rune
	for j := 0; j < 4; j++ {
		if i+j >= len(p.data) {
			return 0, false, nil
		}
		c := p.data[i+j]
		if !isHexDigit(c) {
			return 0, false, syntaxErrorf(i+j, "invalid character %q in \\u hexadecimal character escape", c)
		}
		r = r<<4 | rune(hexValue(c))
	}
	return r, true, nil
}

// lowSurrogatePending reports whether the bytes after a high surrogate could
// still turn into a \uXXXX escape.
func (p *jsonParser) lowSurrogatePending() bool {
	rest := p.data[p.pos:]
	switch {
	case len(rest) == 0:
		return true
	case rest[0] != '\\':
		return false
	case len(rest) == 1:
		return true
	case rest[1] != 'u':
		return false
	default:
		return len(rest) < 6
	}
}

func (p *jsonParser) parseNumber() ([]byte, Truncation, error) {
	start := p.pos

	// Optional minus
	if p.data[p.pos] == '-' {
		p.pos++
	}
	if p.pos >= len(p.data) {
		return p.truncatedValue()
	}

	// Integer part
	switch c := p.data[p.pos]; {
	case c == '0':
		p.pos++
	case c >= '1' && c <= '9':
		p.skipDigits()
	default:
		return nil, "", syntaxErrorf(p.pos, "invalid character %q in numeric literal", c)
	}

	// Decimal part
	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		p.pos++
		if p.pos >= len(p.data) {
			return p.truncatedValue()
		}
		if !isDigit(p.data[p.pos]) {
			return nil, "", syntaxErrorf(p.pos, "invalid character %q after decimal point in numeric literal", p.data[p.pos])
		}
		p.skipDigits()
	}

	// Exponent part
	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if p.pos >= len(p.data) {
			return p.truncatedValue()
		}
		if !isDigit(p.data[p.pos]) {
			return nil, "", syntaxErrorf(p.pos, "invalid character %q in exponent of numeric literal", p.data[p.pos])
		}
		p.skipDigits()
	}

	// More digits may still be on their way.
	if p.pos >= len(p.data) {
		return p.truncatedValue()
	}

	return p.data[start:p.pos], TruncNone, nil
}

func (p *jsonParser) parseLiteral() ([]byte, Truncation, error) {
	var expected string
	switch p.data[p.pos] {
	case 't':
		expected = "true"
	case 'f':
		expected = "false"
	default:
		expected = "null"
	}

	for i := 0; i < len(expected); i++ {
		if p.pos >= len(p.data) {
			return p.truncatedValue()
		}
		if p.data[p.pos] != expected[i] {
			return nil, "", syntaxErrorf(p.pos, "invalid character %q in literal %s (expecting %q)", p.data[p.pos], expected, expected[i])
		}
		p.pos++
	}

	return []byte(expected), TruncNone, nil
}

// nested maps a child's truncation onto its container. A key pending inside
// a nested object only means the nested object is still open; TruncKey is
// reserved for the root object.
func nested(t Truncation) Truncation {
	if t == TruncKey {
		return TruncObject
	}
	return t
}

func (p *jsonParser) truncatedValue() ([]byte, Truncation, error) {
	p.markIncomplete()
	return nil, TruncValue, nil
}

func (p *jsonParser) markIncomplete() {
	if len(p.path) > 0 {
		pathCopy := make([]string, len(p.path))
		copy(pathCopy, p.path)
		p.incomplete = append(p.incomplete, pathCopy)
	}
}

func (p *jsonParser) skipDigits() {
	for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
		p.pos++
	}
}

func (p *jsonParser) skipWhitespace() {
	for p.pos < len(p.data) {
		ch := p.data[p.pos]
		if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
			break
		}
		p.pos++
	}
}

func indexPath(i int) string {
	return "[" + itoa(i) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func hexValue(ch byte) byte {
	switch {
	case isDigit(ch):
		return ch - '0'
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10
	default:
		return ch - 'A' + 10
	}
}
