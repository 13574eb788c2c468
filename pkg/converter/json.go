package converter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/leapstack-labs/fmto/pkg/value"
)

// JSONConverter reads and writes JSON. Member order is preserved in both
// directions.
type JSONConverter struct{}

// Parse implements Converter. The document must be a single JSON object.
func (JSONConverter) Parse(text string) (*value.Object, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	root, err := decodeJSON(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected content after top-level value")
	}

	obj, ok := root.AsObject()
	if !ok {
		return nil, fmt.Errorf("root must be an object, got %s", root.Kind())
	}
	return obj, nil
}

// decodeJSON reads one value from the token stream.
func decodeJSON(dec *json.Decoder) (value.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return value.Value{}, io.ErrUnexpectedEOF
		}
		return value.Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.Bool(t), nil
	case string:
		return value.String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return value.Value{}, fmt.Errorf("invalid number %s: %w", t, err)
		}
		return value.FromAny(f)
	case float64:
		return value.FromAny(t)
	case json.Delim:
		switch t {
		case '{':
			obj := value.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return value.Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return value.Value{}, fmt.Errorf("object key must be string, got %v", keyTok)
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return value.Value{}, fmt.Errorf("key %q: %w", key, err)
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // '}'
				return value.Value{}, err
			}
			return value.FromObject(obj), nil
		case '[':
			items := []value.Value{}
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return value.Value{}, fmt.Errorf("index %d: %w", len(items), err)
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil { // ']'
				return value.Value{}, err
			}
			return value.Array(items...), nil
		}
	}
	return value.Value{}, fmt.Errorf("unexpected token %v", tok)
}

// Format implements Converter. Output is indented by two spaces and ends
// with a newline.
func (JSONConverter) Format(doc *value.Object) (string, error) {
	var compact bytes.Buffer
	if err := encodeJSON(&compact, value.FromObject(doc)); err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", err
	}
	out.WriteByte('\n')
	return out.String(), nil
}

// encodeJSON writes v as compact JSON, keeping object member order.
func encodeJSON(buf *bytes.Buffer, v value.Value) error {
	switch v.Kind() {
	case value.KindNull:
		buf.WriteString("null")
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case value.KindNumber:
		n, _ := v.AsNumber()
		buf.WriteString(value.FormatNumber(n))
	case value.KindString:
		s, _ := v.AsString()
		return writeJSONString(buf, s)
	case value.KindArray:
		buf.WriteByte('[')
		for i, item := range v.Items() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case value.KindObject:
		obj, _ := v.AsObject()
		buf.WriteByte('{')
		first := true
		for key, member := range obj.All() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSONString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeJSON(buf, member); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.MarshalWithOption(s, json.DisableHTMLEscape())
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
