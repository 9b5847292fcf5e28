package footballdata

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/preston-bernstein/football-data-service/internal/providers"
)

// Accessors over schema-less payloads. Every helper tolerates missing keys,
// nil values and unexpected types by returning the zero value.

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case providers.Payload:
		return m
	default:
		return nil
	}
}

func obj(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	return asMap(m[key])
}

func list(m map[string]any, key string) []map[string]any {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if entry := asMap(item); entry != nil {
			out = append(out, entry)
		}
	}
	return out
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	return scalar(m[key])
}

func scalar(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func intVal(m map[string]any, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

func intOr(m map[string]any, key string, fallback int) int {
	if v, ok := intVal(m, key); ok {
		return v
	}
	return fallback
}

func intPtr(m map[string]any, key string) *int {
	if v, ok := intVal(m, key); ok {
		return &v
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
