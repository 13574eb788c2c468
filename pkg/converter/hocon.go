package converter

import (
	"github.com/leapstack-labs/fmto/pkg/format"
	"github.com/leapstack-labs/fmto/pkg/parser"
	"github.com/leapstack-labs/fmto/pkg/value"
)

// HOCONConverter handles the hocon grammar with the hand-written parser
// and emitter.
type HOCONConverter struct{}

// Parse implements Converter.
func (HOCONConverter) Parse(text string) (*value.Object, error) {
	return parser.Parse(text)
}

// Format implements Converter. Emission cannot fail.
func (HOCONConverter) Format(doc *value.Object) (string, error) {
	return format.Format(doc), nil
}
