package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// setting binds a dot-separated path to a Config field.
type setting struct {
	path string
	set  func(c *Config, v any) error
	get  func(c *Config) any
}

func stringSetting(path string, field func(*Config) *string) setting {
	return setting{
		path: path,
		set: func(c *Config, v any) error {
			s, err := cast.ToStringE(v)
			if err == nil {
				*field(c) = s
			}
			return err
		},
		get: func(c *Config) any { return *field(c) },
	}
}

func boolSetting(path string, field func(*Config) *bool) setting {
	return setting{
		path: path,
		set: func(c *Config, v any) error {
			b, err := cast.ToBoolE(v)
			if err == nil {
				*field(c) = b
			}
			return err
		},
		get: func(c *Config) any { return *field(c) },
	}
}

func intSetting(path string, field func(*Config) *int) setting {
	return setting{
		path: path,
		set: func(c *Config, v any) error {
			n, err := cast.ToIntE(v)
			if err == nil {
				*field(c) = n
			}
			return err
		},
		get: func(c *Config) any { return *field(c) },
	}
}

// durationSetting accepts Go duration strings ("250ms", "30s"). Bare
// numbers are nanoseconds.
func durationSetting(path string, field func(*Config) *time.Duration) setting {
	return setting{
		path: path,
		set: func(c *Config, v any) error {
			d, err := cast.ToDurationE(v)
			if err == nil {
				*field(c) = d
			}
			return err
		},
		get: func(c *Config) any { return *field(c) },
	}
}

var settings = []setting{
	stringSetting("api.baseUrl", func(c *Config) *string { return &c.API.BaseURL }),
	stringSetting("api.cdnUrl", func(c *Config) *string { return &c.API.CDNURL }),
	durationSetting("api.timeout", func(c *Config) *time.Duration { return &c.API.Timeout }),

	stringSetting("logging.level", func(c *Config) *string { return &c.Logging.Level }),
	boolSetting("logging.json", func(c *Config) *bool { return &c.Logging.JSON }),
	stringSetting("logging.file", func(c *Config) *string { return &c.Logging.File }),
	intSetting("logging.maxSizeMb", func(c *Config) *int { return &c.Logging.MaxSizeMB }),
	intSetting("logging.maxBackups", func(c *Config) *int { return &c.Logging.MaxBackups }),
	intSetting("logging.maxAgeDays", func(c *Config) *int { return &c.Logging.MaxAgeDays }),

	stringSetting("catalog.file", func(c *Config) *string { return &c.Catalog.File }),
	boolSetting("catalog.watch", func(c *Config) *bool { return &c.Catalog.Watch }),
	durationSetting("catalog.reloadDelay", func(c *Config) *time.Duration { return &c.Catalog.ReloadDelay }),

	stringSetting("server.addr", func(c *Config) *string { return &c.Server.Addr }),
	stringSetting("server.basePath", func(c *Config) *string { return &c.Server.BasePath }),
	stringSetting("server.catalog", func(c *Config) *string { return &c.Server.Catalog }),
	stringSetting("server.database", func(c *Config) *string { return &c.Server.Database }),
	durationSetting("server.shutdownTimeout", func(c *Config) *time.Duration { return &c.Server.ShutdownTimeout }),
}

// lookup finds a setting by path, ignoring case.
func lookup(path string) (setting, bool) {
	for _, s := range settings {
		if strings.EqualFold(s.path, path) {
			return s, true
		}
	}
	return setting{}, false
}

// Paths lists every setting path.
func Paths() []string {
	paths := make([]string, len(settings))
	for i, s := range settings {
		paths[i] = s.path
	}
	return paths
}

// Get returns the value of the setting at path.
func (c *Config) Get(path string) (any, bool) {
	s, ok := lookup(path)
	if !ok {
		return nil, false
	}
	return s.get(c), true
}

// Set converts value to the setting's type and stores it.
func (c *Config) Set(path string, value any) error {
	s, ok := lookup(path)
	if !ok {
		return &ValidationError{Path: path, Message: "unknown setting", Value: value, Code: ErrCodeUnknownSetting}
	}
	if err := s.set(c, value); err != nil {
		return &ValidationError{
			Path:    s.path,
			Message: fmt.Sprintf("cannot convert %T: %v", value, err),
			Value:   value,
			Code:    ErrCodeTypeMismatch,
		}
	}
	return nil
}

// apply sets every value in a nested map. Unknown paths fail only when
// strict is true.
func (c *Config) apply(values map[string]any, strict bool) error {
	flat := make(map[string]any)
	flatten("", values, flat)

	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var errs ValidationErrors
	for _, p := range paths {
		err := c.Set(p, flat[p])
		if err == nil {
			continue
		}
		ve := err.(*ValidationError)
		if ve.Code == ErrCodeUnknownSetting && !strict {
			continue
		}
		errs = append(errs, ve)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// flatten turns {"api": {"baseUrl": x}} into {"api.baseUrl": x}.
func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(path, sub, out)
			continue
		}
		out[path] = v
	}
}
