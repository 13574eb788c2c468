package converter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/fmto/pkg/value"
)

// maxAliasDepth bounds alias expansion so self-referencing anchors fail
// instead of recursing forever.
const maxAliasDepth = 64

// maxYAMLNodes bounds the number of values a document may expand to, so a
// few nested aliases cannot blow up into billions of values.
const maxYAMLNodes = 1_000_000

// ErrYAMLTooLarge is returned when alias expansion exceeds maxYAMLNodes.
var ErrYAMLTooLarge = errors.New("document expands to too many values")

// yamlDecoder walks a node tree and counts every value it produces.
type yamlDecoder struct {
	nodes int
}

// YAMLConverter reads and writes YAML through yaml.Node, which keeps
// mapping order.
type YAMLConverter struct{}

// Parse implements Converter. An empty stream is an empty document.
func (YAMLConverter) Parse(text string) (*value.Object, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return value.NewObject(), nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return value.NewObject(), nil
	}

	d := &yamlDecoder{}
	v, err := d.fromNode(root, 0)
	if err != nil {
		return nil, err
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("root must be a mapping, got %s", v.Kind())
	}
	return obj, nil
}

func (d *yamlDecoder) fromNode(n *yaml.Node, aliases int) (value.Value, error) {
	d.nodes++
	if d.nodes > maxYAMLNodes {
		return value.Value{}, fmt.Errorf("line %d: %w (limit %d)", n.Line, ErrYAMLTooLarge, maxYAMLNodes)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Null(), nil
		}
		return d.fromNode(n.Content[0], aliases)
	case yaml.AliasNode:
		if aliases >= maxAliasDepth {
			return value.Value{}, fmt.Errorf("line %d: alias *%s nested too deeply", n.Line, n.Value)
		}
		return d.fromNode(n.Alias, aliases+1)
	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.fromNode(c, aliases)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.Array(items...), nil
	case yaml.MappingNode:
		obj := value.NewObject()
		if err := d.mergeMapping(obj, n, aliases); err != nil {
			return value.Value{}, err
		}
		return value.FromObject(obj), nil
	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	}
	return value.Value{}, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

// mergeMapping copies the pairs of n into obj. Merge keys ("<<") only
// add members that are not set explicitly.
func (d *yamlDecoder) mergeMapping(obj *value.Object, n *yaml.Node, aliases int) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.ShortTag() == "!!merge" {
			if err := d.applyMerge(obj, v, aliases); err != nil {
				return err
			}
			continue
		}

		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
		}
		val, err := d.fromNode(v, aliases)
		if err != nil {
			return fmt.Errorf("key %q: %w", k.Value, err)
		}
		obj.Set(k.Value, val)
	}
	return nil
}

func (d *yamlDecoder) applyMerge(obj *value.Object, n *yaml.Node, aliases int) error {
	if n.Kind == yaml.AliasNode {
		if aliases >= maxAliasDepth {
			return fmt.Errorf("line %d: alias *%s nested too deeply", n.Line, n.Value)
		}
		return d.applyMerge(obj, n.Alias, aliases+1)
	}

	var sources []*yaml.Node
	switch n.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{n}
	case yaml.SequenceNode:
		sources = n.Content
	default:
		return fmt.Errorf("line %d: merge value must be a mapping or a list of mappings", n.Line)
	}

	for _, src := range sources {
		v, err := d.fromNode(src, aliases)
		if err != nil {
			return err
		}
		merged, ok := v.AsObject()
		if !ok {
			return fmt.Errorf("line %d: merge value must be a mapping", src.Line)
		}
		for key, member := range merged.All() {
			if _, exists := obj.Get(key); !exists {
				obj.Set(key, member)
			}
		}
	}
	return nil
}

func fromYAMLScalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return value.Number(float64(i)), nil
		}
		// Outside int64; fall back to the float reading.
		f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64)
		if err != nil {
			return value.Value{}, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
		return value.FromAny(f)
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.Value{}, err
		}
		v, err := value.FromAny(f)
		if err != nil {
			return value.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		// Strings, timestamps, binary and custom tags keep their text.
		return value.String(n.Value), nil
	}
}

// Format implements Converter. Output uses two-space indentation.
func (YAMLConverter) Format(doc *value.Object) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toYAMLNode(value.FromObject(doc))); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toYAMLNode(v value.Value) *yaml.Node {
	switch v.Kind() {
	case value.KindBool:
		b, _ := v.AsBool()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	case value.KindNumber:
		n, _ := v.AsNumber()
		tag := "!!float"
		if n == math.Trunc(n) && math.Abs(n) < 1<<63 {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value.FormatNumber(n)}
	case value.KindString:
		s, _ := v.AsString()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	case value.KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items() {
			n.Content = append(n.Content, toYAMLNode(item))
		}
		if len(n.Content) == 0 {
			n.Style = yaml.FlowStyle
		}
		return n
	case value.KindObject:
		obj, _ := v.AsObject()
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for key, member := range obj.All() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				toYAMLNode(member),
			)
		}
		if len(n.Content) == 0 {
			n.Style = yaml.FlowStyle
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
