package bind

import (
	"maps"
	"reflect"
	"strings"

	"github.com/ardnew/haiku/dom"
	"github.com/ardnew/haiku/lang"
)

// ParseAmbient parses a "key:value|key:value" context string. Entries
// without ':' or with an empty key are ignored; keys and values are
// trimmed, and later entries override earlier ones.
func ParseAmbient(s string) map[string]any {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	ambient := make(map[string]any)

	for entry := range strings.SplitSeq(s, "|") {
		key, value, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		ambient[key] = strings.TrimSpace(value)
	}

	return ambient
}

// Merge combines an ambient context with a record. A mapping record's
// fields override the ambient defaults; any other record replaces the
// context outright.
func Merge(ambient map[string]any, record any) any {
	if len(ambient) == 0 || !lang.IsMapping(record) {
		return record
	}

	merged := maps.Clone(ambient)

	switch t := record.(type) {
	case map[string]any:
		maps.Copy(merged, t)
	case lang.Sanitized:
		maps.Copy(merged, t)
	default:
		iter := reflect.ValueOf(record).MapRange()
		for iter.Next() {
			merged[dom.ValueString(iter.Key().Interface())] = iter.Value().Interface()
		}
	}

	return merged
}
