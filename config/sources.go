package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Source produces a partial configuration keyed by dotted config keys
// ("server.port"). Sources are merged in order, later sources winning.
type Source struct {
	Name string
	Load func() (map[string]any, error)
}

// Option describes one configuration option and where it can be set from.
type Option struct {
	Key         string
	Env         string
	Flag        string
	Description string
	kind        valueKind
	choices     []string
}

type valueKind int

const (
	kindString valueKind = iota
	kindPort
	kindSize
	kindBool
	kindInt
	kindList
	kindEnum
)

// Options lists every recognized option in display order.
var Options = []Option{
	{Key: "server.ip", Env: "FILEDROP_IP", Flag: "ip", Description: "IP address to listen on", kind: kindString},
	{Key: "server.port", Env: "FILEDROP_PORT", Flag: "port", Description: "Port to listen on", kind: kindPort},
	{Key: "server.public_port", Env: "FILEDROP_PUBLIC_PORT", Flag: "public-port", Description: "Port to use in URLs (defaults to listen port)", kind: kindPort},
	{Key: "server.host", Env: "FILEDROP_HOST", Flag: "host", Description: "Host name to use in URLs", kind: kindString},
	{Key: "storage.path", Env: "FILEDROP_STORAGE", Flag: "storage", Description: "Path to upload storage directory", kind: kindString},
	{Key: "server.size_limit", Env: "FILEDROP_SIZE_LIMIT", Flag: "size-limit", Description: "Upload size limit (bytes, or e.g. 50MiB)", kind: kindSize},
	{Key: "access.allow_upload", Env: "FILEDROP_ALLOW_UPLOAD", Description: "Accept new uploads", kind: kindBool},
	{Key: "access.allow_download", Env: "FILEDROP_ALLOW_DOWNLOAD", Description: "Serve stored files", kind: kindBool},
	{Key: "cors.enabled", Env: "FILEDROP_CORS_ENABLED", Description: "Enable CORS headers", kind: kindBool},
	{Key: "cors.allowed_origins", Env: "FILEDROP_CORS_ALLOWED_ORIGINS", Description: "Comma separated allowed origins", kind: kindList},
	{Key: "cors.allowed_methods", Env: "FILEDROP_CORS_ALLOWED_METHODS", Description: "Comma separated allowed methods", kind: kindList},
	{Key: "cors.allowed_headers", Env: "FILEDROP_CORS_ALLOWED_HEADERS", Description: "Comma separated allowed headers", kind: kindList},
	{Key: "cors.max_age", Env: "FILEDROP_CORS_MAX_AGE", Description: "Preflight cache duration in seconds", kind: kindInt},
	{Key: "log.level", Env: "FILEDROP_LOG_LEVEL", Flag: "log-level", Description: "Log level: debug, info, warn, error", kind: kindEnum, choices: []string{"debug", "info", "warn", "error"}},
	{Key: "log.format", Env: "FILEDROP_LOG_FORMAT", Description: "Log format: text, json", kind: kindEnum, choices: []string{"text", "json"}},
}

func lookupOption(key string) (Option, bool) {
	for _, o := range Options {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

// DefaultsSource returns the built-in defaults. server.public_port is absent
// on purpose: it follows server.port unless some source sets it.
func DefaultsSource() Source {
	return Source{
		Name: "defaults",
		Load: func() (map[string]any, error) {
			return map[string]any{
				"server": map[string]any{
					"ip":         "127.0.0.1",
					"port":       8000,
					"host":       "localhost",
					"size_limit": int64(50 * 1024 * 1024),
				},
				"storage": map[string]any{
					"path": "storage",
				},
				"access": map[string]any{
					"allow_upload":   true,
					"allow_download": true,
				},
				"cors": map[string]any{
					"enabled":         false,
					"allowed_origins": []string{"*"},
					"allowed_methods": []string{"GET", "PUT", "OPTIONS"},
					"allowed_headers": []string{"*"},
					"max_age":         300,
				},
				"log": map[string]any{
					"level":  "info",
					"format": "text",
				},
			}, nil
		},
	}
}

// EnvSource reads the FILEDROP_* variables listed in Options through lookup.
func EnvSource(lookup func(string) (string, bool)) Source {
	return Source{
		Name: "environment",
		Load: func() (map[string]any, error) {
			m := map[string]any{}
			for _, o := range Options {
				if val, ok := lookup(o.Env); ok {
					setNested(m, o.Key, val)
				}
			}
			return m, nil
		},
	}
}

// DotEnvSource reads FILEDROP_* variables from a dotenv file. A missing file
// yields an empty source.
func DotEnvSource(path string) Source {
	return Source{
		Name: "dotenv " + path,
		Load: func() (map[string]any, error) {
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return map[string]any{}, nil
			}

			v := viper.New()
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read env file %s: %w", path, err)
			}

			m := map[string]any{}
			for _, o := range Options {
				// viper lowercases dotenv keys
				if val := v.Get(strings.ToLower(o.Env)); val != nil {
					setNested(m, o.Key, val)
				}
			}
			return m, nil
		},
	}
}

// FileSource reads YAML (or any viper-supported) config files; later files
// override earlier ones. With no files it looks for ./config.yaml and treats
// its absence as an empty source.
func FileSource(configFiles []string) Source {
	return Source{
		Name: "config file",
		Load: func() (map[string]any, error) {
			v := viper.New()

			if len(configFiles) == 0 {
				v.SetConfigName("config")
				v.SetConfigType("yaml")
				v.AddConfigPath(".")

				if err := v.ReadInConfig(); err != nil {
					var configNotFound viper.ConfigFileNotFoundError
					if errors.As(err, &configNotFound) {
						return map[string]any{}, nil
					}
					return nil, fmt.Errorf("read config file: %w", err)
				}
				return v.AllSettings(), nil
			}

			v.SetConfigFile(configFiles[0])
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file %s: %w", configFiles[0], err)
			}

			for _, cf := range configFiles[1:] {
				v.SetConfigFile(cf)
				if err := v.MergeInConfig(); err != nil {
					return nil, fmt.Errorf("merge config file %s: %w", cf, err)
				}
			}

			return v.AllSettings(), nil
		},
	}
}

// FlagSource maps explicitly set CLI flags onto their config keys.
func FlagSource(flags *pflag.FlagSet) Source {
	return Source{
		Name: "flags",
		Load: func() (map[string]any, error) {
			m := map[string]any{}
			if flags == nil {
				return m, nil
			}

			flags.Visit(func(f *pflag.Flag) {
				for _, o := range Options {
					if o.Flag == f.Name {
						setNested(m, o.Key, f.Value.String())
					}
				}
			})
			return m, nil
		},
	}
}

// setNested stores val under a dotted key, creating intermediate maps.
func setNested(m map[string]any, key string, val any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

// mergeMaps copies src into dst, recursing into nested maps. Values in src
// replace those in dst whatever their type.
func mergeMaps(dst, src map[string]any) {
	for k, sv := range src {
		key := strings.ToLower(k)
		if sm, ok := sv.(map[string]any); ok {
			dm, ok := dst[key].(map[string]any)
			if !ok {
				dm = map[string]any{}
				dst[key] = dm
			}
			mergeMaps(dm, sm)
			continue
		}
		dst[key] = sv
	}
}

// sanitize normalizes typed values in a partial configuration and drops the
// ones that do not parse, so that the next lower source supplies the value.
func sanitize(m map[string]any, prefix string, source string, logger *slog.Logger) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if nested, ok := val.(map[string]any); ok {
			sanitize(nested, key, source, logger)
			continue
		}

		o, ok := lookupOption(key)
		if !ok {
			continue
		}

		parsed, err := parseValue(o, val)
		if err != nil {
			logger.Debug("ignoring malformed config value", "key", key, "source", source, "err", err)
			delete(m, k)
			continue
		}
		m[k] = parsed
	}
}

func parseValue(o Option, val any) (any, error) {
	switch o.kind {
	case kindPort:
		port, err := cast.ToIntE(trimString(val))
		if err != nil {
			return nil, err
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("port %d out of range", port)
		}
		return port, nil
	case kindSize:
		return parseSize(val)
	case kindBool:
		return cast.ToBoolE(trimString(val))
	case kindInt:
		return cast.ToIntE(trimString(val))
	case kindList:
		if s, ok := val.(string); ok {
			return splitList(s), nil
		}
		return cast.ToStringSliceE(val)
	case kindEnum:
		v, err := cast.ToStringE(val)
		if err != nil {
			return nil, err
		}
		v = strings.ToLower(strings.TrimSpace(v))
		if !slices.Contains(o.choices, v) {
			return nil, fmt.Errorf("%q is not one of %s", v, strings.Join(o.choices, ", "))
		}
		return v, nil
	default:
		v, err := cast.ToStringE(val)
		if err != nil {
			return nil, err
		}
		if v = strings.TrimSpace(v); v == "" {
			return nil, errors.New("empty value")
		}
		return v, nil
	}
}

// parseSize accepts a byte count or a humanized size such as "50MiB".
func parseSize(val any) (int64, error) {
	if n, err := cast.ToInt64E(trimString(val)); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("size %d must be positive", n)
		}
		return n, nil
	}

	s, ok := val.(string)
	if !ok {
		return 0, fmt.Errorf("size %v: unsupported type %T", val, val)
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	if n < 1 || n > uint64(1<<62) {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	return int64(n), nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func trimString(val any) any {
	if s, ok := val.(string); ok {
		return strings.TrimSpace(s)
	}
	return val
}
