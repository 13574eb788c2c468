package converter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/leapstack-labs/fmto/pkg/value"
)

// TOMLConverter reads and writes TOML. Parsing keeps document order;
// the encoder writes keys of each table sorted, plain values before tables.
type TOMLConverter struct{}

// Parse implements Converter. Dates and times become strings.
func (TOMLConverter) Parse(text string) (*value.Object, error) {
	var m map[string]any
	md, err := toml.Decode(text, &m)
	if err != nil {
		return nil, err
	}

	order := make(map[string]int, len(md.Keys()))
	for i, key := range md.Keys() {
		path := key.String()
		if _, seen := order[path]; !seen {
			order[path] = i
		}
	}
	return tomlTable(m, "", order)
}

// tomlTable converts a decoded table, ordering its keys by first
// appearance in the document.
func tomlTable(m map[string]any, prefix string, order map[string]int) (*value.Object, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	pos := func(k string) int {
		if i, ok := order[tomlPath(prefix, k)]; ok {
			return i
		}
		return len(order)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		pi, pj := pos(keys[i]), pos(keys[j])
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})

	obj := value.NewObject()
	for _, k := range keys {
		v, err := tomlValue(m[k], tomlPath(prefix, k), order)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		obj.Set(k, v)
	}
	return obj, nil
}

func tomlValue(x any, path string, order map[string]int) (value.Value, error) {
	switch t := x.(type) {
	case map[string]any:
		obj, err := tomlTable(t, path, order)
		if err != nil {
			return value.Value{}, err
		}
		return value.FromObject(obj), nil
	case []map[string]any:
		items := make([]value.Value, 0, len(t))
		for _, table := range t {
			obj, err := tomlTable(table, path, order)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, value.FromObject(obj))
		}
		return value.Array(items...), nil
	case []any:
		items := make([]value.Value, 0, len(t))
		for i, item := range t {
			v, err := tomlValue(item, path, order)
			if err != nil {
				return value.Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, v)
		}
		return value.Array(items...), nil
	case time.Time:
		return value.String(tomlTime(t)), nil
	default:
		return value.FromAny(x)
	}
}

// tomlTime renders local dates and times without the zone the decoder
// attaches to them. The decoder marks them with fixed zones that are only
// reachable by name.
func tomlTime(t time.Time) string {
	switch t.Location().String() {
	case "date-local":
		return t.Format(time.DateOnly)
	case "time-local":
		return t.Format("15:04:05.999999999")
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}

// tomlPath joins keys the way toml.Key.String does.
func tomlPath(prefix, key string) string {
	k := toml.Key{key}.String()
	if prefix == "" {
		return k
	}
	return prefix + "." + k
}

// Format implements Converter. TOML has no null, so null members and null
// array elements are left out.
func (TOMLConverter) Format(doc *value.Object) (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(tomlNative(value.FromObject(doc))); err != nil {
		return "", err
	}
	return strings.TrimLeft(buf.String(), "\n"), nil
}

func tomlNative(v value.Value) any {
	switch v.Kind() {
	case value.KindObject:
		obj, _ := v.AsObject()
		m := make(map[string]any, obj.Len())
		for key, member := range obj.All() {
			if member.IsNull() {
				continue
			}
			m[key] = tomlNative(member)
		}
		return m
	case value.KindArray:
		items := make([]any, 0, len(v.Items()))
		for _, item := range v.Items() {
			if item.IsNull() {
				continue
			}
			items = append(items, tomlNative(item))
		}
		return items
	default:
		return value.ToAny(v)
	}
}
