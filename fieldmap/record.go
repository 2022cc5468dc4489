package fieldmap

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Record is the flat output of Map, keyed by field name. Values are either
// gjson results (path fields) or whatever an Extractor returned.
type Record map[string]any

// Has reports whether the field resolved to a value.
func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// String returns the field as a string, "" when absent. Strings read from
// the raw payload are copied so the record never pins the payload buffer.
func (r Record) String(name string) string {
	switch v := r[name].(type) {
	case gjson.Result:
		return strings.Clone(v.String())
	case string:
		return v
	}
	return ""
}

// Int64 returns the field as an integer, 0 when absent or not numeric.
func (r Record) Int64(name string) int64 {
	switch v := r[name].(type) {
	case gjson.Result:
		return v.Int()
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Int is Int64 narrowed to int.
func (r Record) Int(name string) int {
	return int(r.Int64(name))
}

// Strings returns an array field as strings. A scalar reads as a one
// element slice; an absent field as nil.
func (r Record) Strings(name string) []string {
	switch v := r[name].(type) {
	case gjson.Result:
		if !v.IsArray() {
			return []string{strings.Clone(v.String())}
		}
		items := v.Array()
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, strings.Clone(item.String()))
		}
		return out
	case []string:
		return v
	case string:
		return []string{v}
	}
	return nil
}
