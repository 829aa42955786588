package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	filedrophttp "github.com/sagarc03/filedrop/http"
)

// ErrInvalidAddress is returned when the listen IP and port do not form a
// valid socket address.
var ErrInvalidAddress = errors.New("invalid listen address")

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for filedrop.
type Config struct {
	Server  ServerConfig            `mapstructure:"server"`
	Storage StorageConfig           `mapstructure:"storage"`
	Access  AccessConfig            `mapstructure:"access"`
	CORS    filedrophttp.CORSConfig `mapstructure:"cors"`
	Log     LogConfig               `mapstructure:"log"`
}

// ServerConfig holds listener and public URL configuration.
type ServerConfig struct {
	IP         string `mapstructure:"ip" validate:"required"`
	Port       int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Host       string `mapstructure:"host" validate:"required"`
	PublicPort int    `mapstructure:"public_port" validate:"required,min=1,max=65535"`
	SizeLimit  int64  `mapstructure:"size_limit" validate:"required,min=1"`
}

// StorageConfig holds file storage configuration.
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AccessConfig switches the upload and download routes on or off.
type AccessConfig struct {
	AllowUpload   bool `mapstructure:"allow_upload"`
	AllowDownload bool `mapstructure:"allow_download"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

type loadOptions struct {
	logger    *slog.Logger
	envFile   string
	lookupEnv func(string) (string, bool)
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

// WithLogger sets the logger used to report ignored values.
func WithLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

// WithEnvFile sets the dotenv file path. An empty path disables dotenv loading.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(lookup func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		o.lookupEnv = lookup
	}
}

// Sources returns the ordered source list Load merges for the given inputs.
// Order of precedence (highest to lowest): flags > config files > env > .env > defaults
func Sources(configFiles []string, flags *pflag.FlagSet, opts ...LoadOption) []Source {
	o := resolveOptions(opts)

	sources := []Source{DefaultsSource()}
	if o.envFile != "" {
		sources = append(sources, DotEnvSource(o.envFile))
	}
	return append(sources,
		EnvSource(o.lookupEnv),
		FileSource(configFiles),
		FlagSource(flags),
	)
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > config files > env > .env > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet, opts ...LoadOption) (*Config, error) {
	o := resolveOptions(opts)
	return Merge(Sources(configFiles, flags, opts...), o.logger)
}

// Merge applies sources in order with last-writer-wins semantics, then
// unmarshals and validates the result. Malformed typed values are dropped
// from the source that supplied them rather than failing the merge.
func Merge(sources []Source, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	merged := map[string]any{}

	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src.Name, err)
		}

		sanitize(m, "", src.Name, logger)
		mergeMaps(merged, m)
	}

	v := viper.New()
	if err := v.MergeConfigMap(merged); err != nil {
		return nil, fmt.Errorf("merge config: %w", err)
	}

	v.SetDefault("server.public_port", v.GetInt("server.port"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags using go-playground/validator.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// ListenString returns the listen address as "ip:port".
func (c *Config) ListenString() string {
	return net.JoinHostPort(c.Server.IP, strconv.Itoa(c.Server.Port))
}

// PublicHostString returns the host used in generated URLs. The port is
// omitted only when it is 80.
func (c *Config) PublicHostString() string {
	if c.Server.PublicPort == 80 {
		return c.Server.Host
	}
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.PublicPort))
}

// ListenSocketAddress parses ListenString. The IP must be a literal address;
// host names are rejected with ErrInvalidAddress.
func (c *Config) ListenSocketAddress() (netip.AddrPort, error) {
	ap, err := netip.ParseAddrPort(c.ListenString())
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w %q: %w", ErrInvalidAddress, c.ListenString(), err)
	}
	return ap, nil
}

// StorageDirectory returns the cleaned storage directory path.
func (c *Config) StorageDirectory() string {
	return filepath.Clean(c.Storage.Path)
}

// MaxBodyBytes returns the upload size limit in bytes.
func (c *Config) MaxBodyBytes() int64 {
	return c.Server.SizeLimit
}

func resolveOptions(opts []LoadOption) loadOptions {
	o := loadOptions{
		logger:    slog.New(slog.DiscardHandler),
		envFile:   DefaultEnvFile,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
