package value

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SetKeepsFirstPosition(t *testing.T) {
	o := NewObject()
	o.Set("b", Number(1))
	o.Set("a", Number(2))
	o.Set("b", Number(3))

	assert.Equal(t, []string{"b", "a"}, o.Keys())
	got, ok := o.Get("b")
	require.True(t, ok)
	n, _ := got.AsNumber()
	assert.Equal(t, 3.0, n, "last write wins")
	assert.Equal(t, 2, o.Len())
}

func TestObject_AllStopsEarly(t *testing.T) {
	o := NewObject()
	o.Set("x", Null())
	o.Set("y", Null())

	var seen []string
	for k := range o.All() {
		seen = append(seen, k)
		break
	}
	assert.Equal(t, []string{"x"}, seen)
}

func TestValue_Equal(t *testing.T) {
	left := NewObject()
	left.Set("a", Number(1))
	left.Set("b", Array(String("x"), Bool(true), Null()))

	right := NewObject()
	right.Set("b", Array(String("x"), Bool(true), Null()))
	right.Set("a", Number(1))

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null", Null(), Null(), true},
		{"bool mismatch", Bool(true), Bool(false), false},
		{"number", Number(1.5), Number(1.5), true},
		{"kind mismatch", Number(1), String("1"), false},
		{"array order matters", Array(Number(1), Number(2)), Array(Number(2), Number(1)), false},
		{"array length", Array(Number(1)), Array(Number(1), Number(1)), false},
		{"object order ignored", FromObject(left), FromObject(right), true},
		{"empty objects", FromObject(nil), FromObject(NewObject()), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestValue_String(t *testing.T) {
	o := NewObject()
	o.Set("name", String("svc"))
	o.Set("ports", Array(Number(80), Number(443.5)))
	o.Set("tls", Bool(false))
	o.Set("extra", Null())

	assert.Equal(t, `{"name": "svc", "ports": [80, 443.5], "tls": false, "extra": null}`, FromObject(o).String())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1", FormatNumber(1))
	assert.Equal(t, "-2.5", FormatNumber(-2.5))
	assert.Equal(t, "1000000000000000000000", FormatNumber(1e21))
	assert.Equal(t, "0.000001", FormatNumber(1e-6))
}

func TestFromAny(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v, err := FromAny(map[string]any{
		"z":    []any{1, int64(2), 3.5, "s"},
		"a":    map[any]any{"k": true},
		"when": when,
		"none": nil,
		"u":    uint16(7),
		"ints": []int{4, 5},
	})
	require.NoError(t, err)

	obj, ok := v.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "ints", "none", "u", "when", "z"}, obj.Keys(), "map keys are sorted")

	z, _ := obj.Get("z")
	assert.True(t, z.Equal(Array(Number(1), Number(2), Number(3.5), String("s"))))

	a, _ := obj.Get("a")
	inner, ok := a.AsObject()
	require.True(t, ok)
	k, _ := inner.Get("k")
	assert.True(t, k.Equal(Bool(true)))

	w, _ := obj.Get("when")
	s, _ := w.AsString()
	assert.Equal(t, "2024-05-01T12:00:00Z", s)

	ints, _ := obj.Get("ints")
	assert.True(t, ints.Equal(Array(Number(4), Number(5))))
}

func TestFromAny_NonFinite(t *testing.T) {
	_, err := FromAny(map[string]any{"x": math.Inf(1)})
	require.Error(t, err)

	var nf *NonFiniteError
	assert.ErrorAs(t, err, &nf)
	assert.Contains(t, err.Error(), `key "x"`)
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(struct{ A int }{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported native type")
}

func TestToAny(t *testing.T) {
	o := NewObject()
	o.Set("port", Number(8080))
	o.Set("ratio", Number(0.25))
	o.Set("tags", Array(String("a"), Null()))
	sub := NewObject()
	sub.Set("on", Bool(true))
	o.Set("sub", FromObject(sub))

	got := ToMap(o)
	assert.Equal(t, map[string]any{
		"port":  int64(8080),
		"ratio": 0.25,
		"tags":  []any{"a", nil},
		"sub":   map[string]any{"on": true},
	}, got)
}

func TestToAnyFromAny_RoundTrip(t *testing.T) {
	o := NewObject()
	o.Set("a", Number(1))
	o.Set("b", Array(Number(2.5), String("x"), Bool(false)))

	back, err := FromAny(ToMap(o))
	require.NoError(t, err)
	assert.True(t, back.Equal(FromObject(o)))
}
