package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/magiconair/properties"
)

// PropertiesFormat is the viper config type of Java .properties files.
const PropertiesFormat = "properties"

// propertiesCodec lets viper read and write Java .properties files.
// Dotted keys become nested maps, as viper does for every other format.
type propertiesCodec struct{}

func (propertiesCodec) Decode(b []byte, v map[string]any) error {
	p, err := properties.Load(b, properties.UTF8)
	if err != nil {
		return fmt.Errorf("parse properties: %w", err)
	}

	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		setNested(v, strings.Split(key, "."), value)
	}
	return nil
}

func (propertiesCodec) Encode(v map[string]any) ([]byte, error) {
	p := properties.NewProperties()
	flat := make(map[string]string)
	flatten("", v, flat)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, _, err := p.Set(k, flat[k]); err != nil {
			return nil, fmt.Errorf("set property %q: %w", k, err)
		}
	}

	var sb strings.Builder
	if _, err := p.Write(&sb, properties.UTF8); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func setNested(m map[string]any, path []string, value string) {
	for _, part := range path[:len(path)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

func flatten(prefix string, m map[string]any, out map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(key, sub, out)
			continue
		}
		out[key] = fmt.Sprint(v)
	}
}
