package native

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrMalformedInput is wrapped by every Decode failure.
	ErrMalformedInput = errors.New("malformed JSON input")

	// ErrUnencodable is wrapped when a value has no JSON representation
	// (NaN, infinities, nil values).
	ErrUnencodable = errors.New("value cannot be encoded as JSON")
)

// Encode produces the canonical JSON text of v.
//
// Numeric rules:
//   - Int: integer literal.
//   - Float: shortest round-trip literal; ".0" is appended when the text
//     would otherwise read as an integer, so the kind survives decoding.
//   - Decimal: integer literal when integral (any magnitude), otherwise the
//     nearest float64 literal.
//
// Strings are written without HTML escaping and non-ASCII text is kept
// verbatim. Map keys follow insertion order.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustEncode is like Encode but panics on error.
// Use only in tests or when the value is known to be finite.
func MustEncode(v Value) []byte {
	data, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return data
}

func encodeValue(buf *bytes.Buffer, v Value, sortKeys bool) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("%w: nil value", ErrUnencodable)
	case Null:
		buf.WriteString("null")
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		text, err := formatFloat(float64(val))
		if err != nil {
			return err
		}
		buf.WriteString(text)
	case Decimal:
		text, err := formatDecimal(val)
		if err != nil {
			return err
		}
		buf.WriteString(text)
	case String:
		writeString(buf, string(val))
	case List:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, elem, sortKeys); err != nil {
				return fmt.Errorf("list[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Map:
		keys := val.Keys()
		if sortKeys {
			keys = sortedKeys(keys)
		}
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, k)
			buf.WriteByte(':')
			elem, _ := val.Get(k)
			if err := encodeValue(buf, elem, sortKeys); err != nil {
				return fmt.Errorf("map[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("%w: unknown value type %T", ErrUnencodable, v)
	}
	return nil
}

// formatFloat mirrors encoding/json's float formatting, keeping a ".0" suffix
// on integral values.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v", ErrUnencodable, f)
	}

	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	text := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(text)
		if n >= 4 && text[n-4] == 'e' && text[n-3] == '-' && text[n-2] == '0' {
			text = text[:n-2] + text[n-1:]
		}
	}
	if !strings.ContainsAny(text, ".e") {
		text += ".0"
	}
	return text, nil
}

func formatDecimal(d Decimal) (string, error) {
	if !d.IsFinite() {
		return "", fmt.Errorf("%w: decimal %s", ErrUnencodable, d)
	}
	if d.IsIntegral() {
		return d.integerText(), nil
	}
	f, err := d.value().Float64()
	if err != nil {
		return "", fmt.Errorf("%w: decimal %s: %v", ErrUnencodable, d, err)
	}
	return formatFloat(f)
}

const hexDigits = "0123456789abcdef"

// writeString writes s as a JSON string. Only the quote, the backslash and
// control characters are escaped; invalid UTF-8 becomes U+FFFD.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch {
			case c == '"':
				buf.WriteString(`\"`)
			case c == '\\':
				buf.WriteString(`\\`)
			case c == '\n':
				buf.WriteString(`\n`)
			case c == '\r':
				buf.WriteString(`\r`)
			case c == '\t':
				buf.WriteString(`\t`)
			case c == '\b':
				buf.WriteString(`\b`)
			case c == '\f':
				buf.WriteString(`\f`)
			case c < 0x20:
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[c>>4])
				buf.WriteByte(hexDigits[c&0xF])
			default:
				buf.WriteByte(c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteString("\ufffd")
		} else {
			buf.WriteString(s[i : i+size])
		}
		i += size
	}
	buf.WriteByte('"')
}

// Decode parses JSON text into a Value using ordinary JSON semantics.
//
// Integer literals become Int, or Decimal when outside the int64 range.
// Literals with a fraction or exponent become Float. Object key order is
// kept. Every failure wraps ErrMalformedInput.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrMalformedInput)
	}

	return v, nil
}

// DecodeString is Decode for text input.
func DecodeString(s string) (Value, error) {
	return Decode([]byte(s))
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, errors.New("unexpected end of JSON input")
	}
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return decodeNumber(t)
	case json.Delim:
		switch t {
		case '[':
			return decodeList(dec)
		case '{':
			return decodeMap(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeList(dec *json.Decoder) (Value, error) {
	list := List{}
	for dec.More() {
		elem, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", len(list), err)
		}
		list = append(list, elem)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return list, nil
}

func decodeMap(dec *json.Decoder) (Value, error) {
	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		elem, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("map[%q]: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: elem})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return NewMap(entries...), nil
}

func decodeNumber(n json.Number) (Value, error) {
	s := string(n)
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("number %s out of float64 range", s)
		}
		return Float(f), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}
	d, err := NewDecimal(s)
	if err != nil {
		return nil, err
	}
	return d, nil
}
