package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_][A-Za-z0-9_.\-]*)\s*\}\}`)

// Rendered is the result of filling a template.
type Rendered struct {
	Content string   `json:"content"`
	Missing []string `json:"missing"`
}

// Render replaces {{field}} placeholders in content with entries of values. Dotted names walk
// nested objects. Placeholders without a value are kept verbatim and reported in Missing, once
// each, in order of first appearance.
//
// When content is itself a JSON document (SFDT), substituted text is escaped so the result stays
// valid JSON.
func Render(content string, values map[string]any) Rendered {
	jsonContent := json.Valid([]byte(content))
	seen := make(map[string]bool)
	missing := make([]string, 0)

	out := placeholder.ReplaceAllStringFunc(content, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		v, ok := lookup(values, name)
		if !ok {
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
			return match
		}
		s := format(v)
		if jsonContent {
			s = escapeJSON(s)
		}
		return s
	})
	return Rendered{Content: out, Missing: missing}
}

// DecodeValues parses a JSON object of placeholder values, keeping numbers as written.
func DecodeValues(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, invalid("values", "must be a JSON object")
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

func lookup(values map[string]any, name string) (any, bool) {
	var cur any = values
	for _, part := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func format(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// escapeJSON returns s escaped for use inside a JSON string literal.
func escapeJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b[1 : len(b)-1])
}
