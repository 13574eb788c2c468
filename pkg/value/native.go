package value

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
)

// maxSafeInt is the largest integer a float64 represents exactly.
const maxSafeInt = 1 << 53

// NonFiniteError is returned when a native value holds NaN or an infinity.
type NonFiniteError struct {
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("non-finite number %v cannot be represented", e.Value)
}

// FromAny converts a decoded native Go value into a Value.
//
// Maps with non-string keys are converted using fmt's %v of the key. Map
// members are ordered by key, since Go maps carry no order of their own.
// Times are rendered as RFC 3339 strings.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Object:
		return FromObject(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return number(t)
	case float32:
		return number(float64(t))
	case int:
		return Number(float64(t)), nil
	case int8:
		return Number(float64(t)), nil
	case int16:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case time.Time:
		return String(t.Format(time.RFC3339Nano)), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, v)
		}
		return Array(items...), nil
	case map[string]any:
		obj, err := objectFromMap(t)
		if err != nil {
			return Value{}, err
		}
		return FromObject(obj), nil
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[fmt.Sprintf("%v", k)] = v
		}
		obj, err := objectFromMap(m)
		if err != nil {
			return Value{}, err
		}
		return FromObject(obj), nil
	case fmt.Stringer:
		return String(t.String()), nil
	case encoding.TextMarshaler:
		b, err := t.MarshalText()
		if err != nil {
			return Value{}, err
		}
		return String(string(b)), nil
	}
	return fromReflect(x)
}

// ObjectFromMap converts a native map into an Object ordered by key.
func ObjectFromMap(m map[string]any) (*Object, error) {
	return objectFromMap(m)
}

func objectFromMap(m map[string]any) (*Object, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := NewObject()
	for _, k := range keys {
		v, err := FromAny(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		obj.Set(k, v)
	}
	return obj, nil
}

func number(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, &NonFiniteError{Value: f}
	}
	return Number(f), nil
}

// fromReflect handles typed slices and maps that the fast path misses.
func fromReflect(x any) (Value, error) {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return FromAny(items)
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprintf("%v", iter.Key().Interface())] = iter.Value().Interface()
		}
		return FromAny(m)
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		return FromAny(rv.Elem().Interface())
	}
	return Value{}, fmt.Errorf("unsupported native type %T", x)
}

// ToAny converts v into plain Go values: nil, bool, string, int64, float64,
// []any and map[string]any. Integral numbers within the exactly
// representable range become int64 so serializers print them without a
// fractional part.
func ToAny(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.n == math.Trunc(v.n) && math.Abs(v.n) <= maxSafeInt {
			return int64(v.n)
		}
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = ToAny(item)
		}
		return out
	case KindObject:
		return ToMap(v.obj)
	}
	return nil
}

// ToMap converts an object into a map[string]any.
func ToMap(o *Object) map[string]any {
	out := make(map[string]any, o.Len())
	for k, v := range o.All() {
		out[k] = ToAny(v)
	}
	return out
}
