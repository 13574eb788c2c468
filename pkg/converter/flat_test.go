package converter

import (
	"testing"

	"github.com/leapstack-labs/fmto/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mixedDoc holds members that flat formats cannot represent.
func mixedDoc() *value.Object {
	db := value.NewObject()
	db.Set("host", value.String("localhost"))
	db.Set("port", value.Number(5432))
	db.Set("nested", value.FromObject(value.NewObject()))

	doc := value.NewObject()
	doc.Set("NAME", value.String("svc"))
	doc.Set("PORT", value.Number(8080))
	doc.Set("DEBUG", value.Bool(true))
	doc.Set("LIST", value.Array(value.String("a")))
	doc.Set("db", value.FromObject(db))
	return doc
}

func TestINI_Parse(t *testing.T) {
	doc, err := INIConverter{}.Parse(`name = svc
; comment
[database]
host = localhost
port = 5432

[cache]
ttl = 30s # not a comment
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "database", "cache"}, doc.Keys())

	name, _ := doc.Get("name")
	assert.True(t, name.Equal(value.String("svc")))

	database, _ := doc.Get("database")
	db, ok := database.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"host", "port"}, db.Keys())
	port, _ := db.Get("port")
	assert.True(t, port.Equal(value.String("5432")), "ini values stay strings")

	cache, _ := doc.Get("cache")
	c, _ := cache.AsObject()
	ttl, _ := c.Get("ttl")
	assert.True(t, ttl.Equal(value.String("30s # not a comment")))
}

func TestINI_FormatDropsUnrepresentable(t *testing.T) {
	out, err := INIConverter{}.Format(mixedDoc())
	require.NoError(t, err)

	back, err := INIConverter{}.Parse(out)
	require.NoError(t, err)

	want := value.NewObject()
	want.Set("NAME", value.String("svc"))
	db := value.NewObject()
	db.Set("host", value.String("localhost"))
	want.Set("db", value.FromObject(db))

	assert.True(t, want.Equal(back), "got %s from:\n%s", back, out)
	assert.Contains(t, out, "[db]")
}

func TestEnv_Parse(t *testing.T) {
	doc, err := EnvConverter{}.Parse(`# settings
ZED=last
export APP_NAME="my app"
PORT=8080
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"APP_NAME", "PORT", "ZED"}, doc.Keys())

	name, _ := doc.Get("APP_NAME")
	assert.True(t, name.Equal(value.String("my app")))
	port, _ := doc.Get("PORT")
	assert.True(t, port.Equal(value.String("8080")))
}

func TestEnv_FormatKeepsOnlyTopLevelStrings(t *testing.T) {
	out, err := EnvConverter{}.Format(mixedDoc())
	require.NoError(t, err)
	assert.Equal(t, "NAME=\"svc\"\n", out)

	empty, err := EnvConverter{}.Format(value.NewObject())
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestEnv_RoundTrip(t *testing.T) {
	doc := value.NewObject()
	doc.Set("A", value.String("1"))
	doc.Set("B", value.String("two words"))

	out, err := EnvConverter{}.Format(doc)
	require.NoError(t, err)
	back, err := EnvConverter{}.Parse(out)
	require.NoError(t, err)
	assert.True(t, doc.Equal(back), "got %s from:\n%s", back, out)
}

func TestXML_Parse(t *testing.T) {
	doc, err := XMLConverter{}.Parse(`<?xml version="1.0"?>
<server env="prod">
  <host>localhost</host>
  <port>8080</port>
  <tls>true</tls>
  <alias>a</alias>
  <alias>b</alias>
</server>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"server"}, doc.Keys())

	server, _ := doc.Get("server")
	obj, ok := server.AsObject()
	require.True(t, ok)

	checks := map[string]value.Value{
		"-env":  value.String("prod"),
		"host":  value.String("localhost"),
		"port":  value.Number(8080),
		"tls":   value.Bool(true),
		"alias": value.Array(value.String("a"), value.String("b")),
	}
	for k, want := range checks {
		got, ok := obj.Get(k)
		require.True(t, ok, "missing %q", k)
		assert.True(t, want.Equal(got), "%s: got %s, want %s", k, got, want)
	}
}

func TestXML_ParseInvalid(t *testing.T) {
	_, err := XMLConverter{}.Parse("<open>")
	assert.Error(t, err)
}

func TestXML_FormatSingleRoot(t *testing.T) {
	inner := value.NewObject()
	inner.Set("host", value.String("localhost"))
	inner.Set("port", value.Number(8080))
	doc := value.NewObject()
	doc.Set("server", value.FromObject(inner))

	out, err := XMLConverter{}.Format(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "<server>")
	assert.Contains(t, out, "<host>localhost</host>")
	assert.Contains(t, out, "<port>8080</port>")
	assert.NotContains(t, out, "<config>")

	back, err := XMLConverter{}.Parse(out)
	require.NoError(t, err)
	assert.True(t, doc.Equal(back), "got %s from:\n%s", back, out)
}

func TestXML_FormatWrapsMultipleMembers(t *testing.T) {
	doc := value.NewObject()
	doc.Set("name", value.String("svc"))
	doc.Set("debug", value.Bool(false))

	out, err := XMLConverter{}.Format(doc)
	require.NoError(t, err)
	assert.Contains(t, out, "<config>")

	back, err := XMLConverter{}.Parse(out)
	require.NoError(t, err)
	config, _ := back.Get("config")
	obj, ok := config.AsObject()
	require.True(t, ok)
	assert.True(t, doc.Equal(obj), "got %s from:\n%s", obj, out)
}
