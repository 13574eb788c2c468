package format

import (
	"strings"

	"github.com/leapstack-labs/fmto/pkg/value"
)

// Format renders a document. The root object is always wrapped in braces,
// so an empty document renders as "{\n}\n".
func Format(doc *value.Object) string {
	p := newPrinter()
	p.formatObject(doc)
	return p.String()
}

// Value renders a single value at the top level.
func Value(v value.Value) string {
	p := newPrinter()
	p.formatValue(v)
	return p.String()
}

func (p *Printer) formatValue(v value.Value) {
	switch v.Kind() {
	case value.KindNull:
		p.write("null")
	case value.KindBool:
		if b, _ := v.AsBool(); b {
			p.write("true")
		} else {
			p.write("false")
		}
	case value.KindNumber:
		n, _ := v.AsNumber()
		p.write(value.FormatNumber(n))
	case value.KindString:
		s, _ := v.AsString()
		p.write(quote(s))
	case value.KindArray:
		p.formatArray(v.Items())
	case value.KindObject:
		obj, _ := v.AsObject()
		p.formatObject(obj)
	}
}

// formatObject writes '{', one member per line one level deeper, and a
// closing '}' at the current level.
func (p *Printer) formatObject(obj *value.Object) {
	p.write("{")
	p.writeln()
	p.indent()
	for key, v := range obj.All() {
		p.write(quote(key))
		p.write(" = ")
		p.formatValue(v)
		p.writeln()
	}
	p.dedent()
	p.write("}")
}

// formatArray writes every element on its own line followed by a comma,
// the last one included.
func (p *Printer) formatArray(items []value.Value) {
	p.write("[")
	p.writeln()
	p.indent()
	for _, item := range items {
		p.formatValue(item)
		p.write(",")
		p.writeln()
	}
	p.dedent()
	p.write("]")
}

// quote wraps s in double quotes, or in single quotes when s holds a double
// quote but no single quote. There is no escaping: a string holding both
// quote characters does not parse back.
func quote(s string) string {
	if strings.ContainsRune(s, '"') && !strings.ContainsRune(s, '\'') {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}
