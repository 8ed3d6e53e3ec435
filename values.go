package docfill

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Values - data to fill template with.
// Held nested so the engine can walk into maps and slices,
// flatten only when reporting keys back to the user.
type Values map[string]any

// LoadValues - read values file, format by extension
func LoadValues(path string) (Values, error) {
	buf, err := os.ReadFile(path) // #nosec  G304 - allowed filename variable here
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return YAMLToValues(buf)
	case ".json":
		return JSONToValues(buf)
	case ".ini":
		return INIToValues(buf)
	case ".toml":
		return TOMLToValues(buf)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// YAMLToValues - parse yaml contents
func YAMLToValues(buf []byte) (Values, error) {
	var data map[string]any
	if err := yaml.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return normalizeMap(data), nil
}

// JSONToValues - parse json contents
func JSONToValues(buf []byte) (Values, error) {
	var data map[string]any

	// UseNumber so "42" stays int-comparable and not 4.2e+01
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return normalizeMap(data), nil
}

// TOMLToValues - parse toml contents
func TOMLToValues(buf []byte) (Values, error) {
	var data map[string]any
	if err := toml.Unmarshal(buf, &data); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return normalizeMap(data), nil
}

// INIToValues - parse ini contents.
// Section keys nest one level so placeholders read as section.key
func INIToValues(buf []byte) (Values, error) {
	f, err := ini.Load(buf)
	if err != nil {
		return nil, fmt.Errorf("parse ini: %w", err)
	}

	vals := Values{}
	for _, section := range f.Sections() {
		if section.Name() == ini.DefaultSection {
			for _, key := range section.Keys() {
				vals[key.Name()] = key.Value()
			}
			continue
		}

		m := map[string]any{}
		for _, key := range section.Keys() {
			m[key.Name()] = key.Value()
		}
		vals[section.Name()] = m
	}
	return vals, nil
}

// Flatten - nested maps become dot separated keys, any other value
// is stringified under its key as is
func (v Values) Flatten() map[string]string {
	flat := map[string]string{}
	flattenInto("", v, flat)
	return flat
}

func flattenInto(prefix string, m map[string]any, flat map[string]string) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if sub, ok := val.(map[string]any); ok {
			flattenInto(key, sub, flat)
			continue
		}
		flat[key] = stringify(val)
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Copy of values with strings made safe to embed into document xml.
// Numbers and bools stay untouched so conditions can compare them.
func (v Values) escaped() map[string]any {
	m, _ := escapeValue(map[string]any(v)).(map[string]any)
	return m
}

func escapeValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(vv))
		for k, val := range vv {
			m[k] = escapeValue(val)
		}
		return m
	case []any:
		s := make([]any, len(vv))
		for i, val := range vv {
			s[i] = escapeValue(val)
		}
		return s
	case string:
		return escapeXMLValue(vv)
	default:
		return vv
	}
}

// Escape markup chars and turn newlines/tabs into their docx nodes.
// Values land inside <w:t> so breaks must close and reopen the text node.
func escapeXMLValue(s string) string {
	if !strings.ContainsAny(s, "&<>\n\r\t") {
		return s
	}

	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '\n':
			sb.WriteString("</w:t><w:br/><w:t xml:space=\"preserve\">")
		case '\r':
			// swallow, \r\n pairs handled by \n
		case '\t':
			sb.WriteString("</w:t><w:tab/><w:t xml:space=\"preserve\">")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Values that cant be traversed deeper (map keys with non string keys
// from yaml, json numbers) normalized so the engine and Flatten see
// one shape
func normalizeMap(data map[string]any) Values {
	if data == nil {
		return Values{}
	}

	vals := Values{}
	for k, v := range data {
		vals[k] = normalizeValue(v)
	}
	return vals
}

func normalizeValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(vv))
		for k, val := range vv {
			m[k] = normalizeValue(val)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(vv))
		for k, val := range vv {
			m[fmt.Sprintf("%v", k)] = normalizeValue(val)
		}
		return m
	case []any:
		s := make([]any, len(vv))
		for i, val := range vv {
			s[i] = normalizeValue(val)
		}
		return s
	case json.Number:
		if n, err := vv.Int64(); err == nil {
			return n
		}
		if f, err := vv.Float64(); err == nil {
			return f
		}
		return vv.String()
	default:
		return vv
	}
}
