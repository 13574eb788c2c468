package converter

import (
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/fmto/pkg/value"
)

var _ koanf.Parser = (*KoanfParser)(nil)

// KoanfParser adapts a Converter to the koanf.Parser interface so any
// supported format can back a koanf configuration layer.
type KoanfParser struct {
	Format Format
}

// Parser returns a koanf parser for f.
func Parser(f Format) *KoanfParser {
	return &KoanfParser{Format: f}
}

// Unmarshal parses b into a nested map.
func (p *KoanfParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	c, err := Lookup(p.Format)
	if err != nil {
		return nil, err
	}
	doc, err := c.Parse(string(b))
	if err != nil {
		return nil, &Error{Format: p.Format, Op: OpParse, Err: err}
	}
	return value.ToMap(doc), nil
}

// Marshal renders a nested map. Map members are written in key order.
func (p *KoanfParser) Marshal(m map[string]interface{}) ([]byte, error) {
	c, err := Lookup(p.Format)
	if err != nil {
		return nil, err
	}
	doc, err := value.ObjectFromMap(m)
	if err != nil {
		return nil, &Error{Format: p.Format, Op: OpFormat, Err: err}
	}
	out, err := c.Format(doc)
	if err != nil {
		return nil, &Error{Format: p.Format, Op: OpFormat, Err: err}
	}
	return []byte(out), nil
}
