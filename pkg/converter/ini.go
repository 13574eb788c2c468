package converter

import (
	"bytes"

	"gopkg.in/ini.v1"

	"github.com/leapstack-labs/fmto/pkg/value"
)

// INIConverter reads and writes INI files. Keys outside any section map to
// top-level strings; each section maps to an object of strings.
type INIConverter struct{}

func iniLoadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		IgnoreInlineComment: true,
	}
}

// Parse implements Converter. All values are strings.
func (INIConverter) Parse(text string) (*value.Object, error) {
	f, err := ini.LoadSources(iniLoadOptions(), []byte(text))
	if err != nil {
		return nil, err
	}

	doc := value.NewObject()
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			for _, key := range sec.Keys() {
				doc.Set(key.Name(), value.String(key.Value()))
			}
			continue
		}
		members := value.NewObject()
		for _, key := range sec.Keys() {
			members.Set(key.Name(), value.String(key.Value()))
		}
		doc.Set(sec.Name(), value.FromObject(members))
	}
	return doc, nil
}

// Format implements Converter. Only string members survive: top-level
// strings, and the string members of top-level objects as sections.
// Everything else is dropped.
func (INIConverter) Format(doc *value.Object) (string, error) {
	f := ini.Empty(iniLoadOptions())

	def := f.Section(ini.DefaultSection)
	for key, v := range doc.All() {
		if s, ok := v.AsString(); ok {
			if _, err := def.NewKey(key, s); err != nil {
				return "", err
			}
		}
	}

	for key, v := range doc.All() {
		members, ok := v.AsObject()
		if !ok {
			continue
		}
		sec, err := f.NewSection(key)
		if err != nil {
			return "", err
		}
		for name, member := range members.All() {
			s, ok := member.AsString()
			if !ok {
				continue
			}
			if _, err := sec.NewKey(name, s); err != nil {
				return "", err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
