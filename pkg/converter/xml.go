package converter

import (
	"fmt"

	"github.com/clbanning/mxj/v2"

	"github.com/leapstack-labs/fmto/pkg/value"
)

// xmlRootTag wraps documents that do not have exactly one object member.
const xmlRootTag = "config"

// XMLConverter reads and writes XML through mxj maps. Attributes appear as
// "-name" members and element text next to attributes as "#text". Member
// order is not kept.
type XMLConverter struct{}

// Parse implements Converter. The root element becomes the only member of
// the document. Numeric and boolean text is cast to numbers and booleans.
func (XMLConverter) Parse(text string) (*value.Object, error) {
	m, err := mxj.NewMapXml([]byte(text), true)
	if err != nil {
		return nil, err
	}
	return value.ObjectFromMap(map[string]any(m))
}

// Format implements Converter. A document with a single object member
// uses that member as the root element; any other document is wrapped in
// a <config> element.
func (XMLConverter) Format(doc *value.Object) (string, error) {
	var (
		b   []byte
		err error
	)
	if root, ok := xmlSingleRoot(doc); ok {
		inner, _ := doc.Get(root)
		obj, _ := inner.AsObject()
		b, err = mxj.Map(value.ToMap(obj)).XmlIndent("", "  ", root)
	} else {
		b, err = mxj.Map(value.ToMap(doc)).XmlIndent("", "  ", xmlRootTag)
	}
	if err != nil {
		return "", fmt.Errorf("encode xml: %w", err)
	}
	return string(b) + "\n", nil
}

func xmlSingleRoot(doc *value.Object) (string, bool) {
	if doc.Len() != 1 {
		return "", false
	}
	key := doc.Keys()[0]
	v, _ := doc.Get(key)
	if _, ok := v.AsObject(); !ok {
		return "", false
	}
	return key, true
}
