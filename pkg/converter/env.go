package converter

import (
	"sort"

	"github.com/joho/godotenv"

	"github.com/leapstack-labs/fmto/pkg/value"
)

// EnvConverter reads and writes dotenv files: one KEY=value pair per line.
type EnvConverter struct{}

// Parse implements Converter. Every value is a string and members are
// ordered by key.
func (EnvConverter) Parse(text string) (*value.Object, error) {
	m, err := godotenv.Unmarshal(text)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := value.NewObject()
	for _, k := range keys {
		doc.Set(k, value.String(m[k]))
	}
	return doc, nil
}

// Format implements Converter. Only top-level string members are written;
// members of any other kind are dropped. Lines are sorted by key.
func (EnvConverter) Format(doc *value.Object) (string, error) {
	m := make(map[string]string, doc.Len())
	for key, v := range doc.All() {
		if s, ok := v.AsString(); ok {
			m[key] = s
		}
	}
	if len(m) == 0 {
		return "", nil
	}

	out, err := godotenv.Marshal(m)
	if err != nil {
		return "", err
	}
	return out + "\n", nil
}
