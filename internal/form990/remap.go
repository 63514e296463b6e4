package form990

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Remap maps internal field names to the names used in output rows.
type Remap map[string]string

// Name returns the output name for k, or k when no mapping exists.
func (m Remap) Name(k string) string {
	if v, ok := m[k]; ok && v != "" {
		return v
	}
	return k
}

// Merge returns a new remap with other's entries layered over m's.
func (m Remap) Merge(other Remap) Remap {
	if len(m) == 0 && len(other) == 0 {
		return nil
	}
	out := make(Remap, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// LoadRemap reads a YAML mapping of internal to output field names.
func LoadRemap(path string) (Remap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "form990: read remap %s", path)
	}
	var m Remap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "form990: parse remap %s", path)
	}
	return m, nil
}

// ParseRemap parses "internal=output" pairs.
func ParseRemap(pairs []string) (Remap, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(Remap, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			return nil, eris.Errorf("form990: invalid remap %q (want internal=output)", p)
		}
		m[k] = v
	}
	return m, nil
}
