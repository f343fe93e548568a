package inputs

import "strings"

// Config is a key-value map for input-type-specific configuration.
// The backend passes it when creating an input; implementations interpret it.
type Config map[string]any

// String returns the trimmed string value of key, or "" if absent or not a string.
func (c Config) String(key string) string {
	s, _ := c[key].(string)
	return strings.TrimSpace(s)
}
