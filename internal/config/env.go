package config

import "strings"

// EnvPrefix starts every environment variable read by Load.
const EnvPrefix = "LAREK_"

// envValues collects the prefixed variables of environ into a nested map.
// Empty values count as set.
func envValues(prefix string, environ []string) map[string]any {
	values := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		path := envToPath(prefix, name)
		if path == "" {
			continue
		}
		setByPath(values, path, value)
	}
	return values
}

// envToPath converts LAREK_API_BASE_URL to api.baseUrl.
func envToPath(prefix, env string) string {
	name := strings.TrimPrefix(env, prefix)
	parts := strings.Split(name, "_")
	if len(parts) < 2 || parts[0] == "" {
		return ""
	}

	section := strings.ToLower(parts[0])
	setting := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part == "" {
			continue
		}
		setting += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return section + "." + setting
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
