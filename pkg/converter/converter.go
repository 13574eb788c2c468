// Package converter maps format tags to parse/format pairs over the
// canonical value model.
//
// Every supported format implements Converter. Formats form a closed set;
// Lookup resolves one with a switch and holds no state, so converters are
// safe for concurrent use.
package converter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/fmto/pkg/value"
)

// Converter parses text into a document and renders a document as text.
type Converter interface {
	Parse(text string) (*value.Object, error)
	Format(doc *value.Object) (string, error)
}

// Format identifies a supported configuration format.
type Format uint8

// Supported formats. The zero value is not a format.
const (
	Unknown Format = iota
	HOCON
	JSON
	YAML
	TOML
	INI
	XML
	ENV
)

var formatNames = [...]string{
	Unknown: "unknown",
	HOCON:   "hocon",
	JSON:    "json",
	YAML:    "yaml",
	TOML:    "toml",
	INI:     "ini",
	XML:     "xml",
	ENV:     "env",
}

// extensions lists the recognized file extensions per format. The first
// entry is the one used when writing files.
var extensions = map[Format][]string{
	HOCON: {"conf", "hocon"},
	JSON:  {"json"},
	YAML:  {"yaml", "yml"},
	TOML:  {"toml"},
	INI:   {"ini"},
	XML:   {"xml"},
	ENV:   {"env"},
}

// String returns the format tag.
func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", f)
}

// Extension returns the extension, without a dot, used for output files.
func (f Format) Extension() string {
	if exts := extensions[f]; len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// Extensions returns every extension recognized for f.
func (f Format) Extensions() []string {
	return append([]string(nil), extensions[f]...)
}

// Nested reports whether the format keeps nesting beyond one level.
// INI keeps one level of sections and ENV keeps none.
func (f Format) Nested() bool {
	switch f {
	case INI, ENV, Unknown:
		return false
	}
	return f.Valid()
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return f > Unknown && f <= ENV
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so formats can be
// decoded straight from configuration files.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Formats returns all supported formats in declaration order.
func Formats() []Format {
	return []Format{HOCON, JSON, YAML, TOML, INI, XML, ENV}
}

// Names returns all format tags in declaration order.
func Names() []string {
	formats := Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.String()
	}
	return names
}

// ParseFormat resolves a format tag or a file extension, case-insensitively.
// A leading dot is ignored, so ".yml", "YML" and "yaml" all resolve to YAML.
func ParseFormat(name string) (Format, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	for _, f := range Formats() {
		if key == f.String() {
			return f, nil
		}
		for _, ext := range extensions[f] {
			if key == ext {
				return f, nil
			}
		}
	}
	return Unknown, &UnknownFormatError{Name: name, Available: Names()}
}

// FromPath resolves the format of a file from its extension.
func FromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return Unknown, &UnknownFormatError{Name: path, Available: Names(), Path: true}
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return Unknown, &UnknownFormatError{Name: path, Available: Names(), Path: true}
	}
	return f, nil
}

// Lookup returns the converter for f.
func Lookup(f Format) (Converter, error) {
	switch f {
	case HOCON:
		return HOCONConverter{}, nil
	case JSON:
		return JSONConverter{}, nil
	case YAML:
		return YAMLConverter{}, nil
	case TOML:
		return TOMLConverter{}, nil
	case INI:
		return INIConverter{}, nil
	case XML:
		return XMLConverter{}, nil
	case ENV:
		return EnvConverter{}, nil
	default:
		return nil, &UnknownFormatError{Name: f.String(), Available: Names()}
	}
}

// MustLookup is like Lookup but panics on an unknown format.
func MustLookup(f Format) Converter {
	c, err := Lookup(f)
	if err != nil {
		panic(err)
	}
	return c
}

// Convert parses text in one format and renders it in another.
func Convert(text string, from, to Format) (string, error) {
	src, err := Lookup(from)
	if err != nil {
		return "", err
	}
	dst, err := Lookup(to)
	if err != nil {
		return "", err
	}

	doc, err := src.Parse(text)
	if err != nil {
		return "", &Error{Format: from, Op: OpParse, Err: err}
	}
	out, err := dst.Format(doc)
	if err != nil {
		return "", &Error{Format: to, Op: OpFormat, Err: err}
	}
	return out, nil
}

// UnknownFormatError is returned when a tag or extension names no format.
type UnknownFormatError struct {
	Name      string
	Available []string
	Path      bool // Name is a file path rather than a tag
}

func (e *UnknownFormatError) Error() string {
	if e.Path {
		return fmt.Sprintf("unknown format for %q\nAvailable formats: %v\nHint: use a recognized extension or pass the format explicitly", e.Name, e.Available)
	}
	return fmt.Sprintf("unknown format %q\nAvailable formats: %v", e.Name, e.Available)
}

// Operations reported by Error.
const (
	OpParse  = "parse"
	OpFormat = "format"
)

// Error attaches the format and operation to a converter failure.
type Error struct {
	Format Format
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Format, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
