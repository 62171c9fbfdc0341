package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/contentd"
	contentdhttp "github.com/sagarc03/contentd/http"
)

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

// Config is the root configuration struct for contentd.
type Config struct {
	Server      ServerConfig            `mapstructure:"server" yaml:"server"`
	Storage     StorageConfig           `mapstructure:"storage" yaml:"storage"`
	Download    DownloadConfig          `mapstructure:"download" yaml:"download"`
	Attachment  AttachmentConfig        `mapstructure:"attachment" yaml:"attachment"`
	CORS        contentdhttp.CORSConfig `mapstructure:"cors" yaml:"cors"`
	Log         LogConfig               `mapstructure:"log" yaml:"log"`
	Diagnostics DiagnosticsConfig       `mapstructure:"diagnostics" yaml:"diagnostics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size" yaml:"max_upload_size" validate:"min=0"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds the content root configuration.
type StorageConfig struct {
	Path      string `mapstructure:"path" yaml:"path" validate:"required"`
	Extension string `mapstructure:"extension" yaml:"extension" validate:"omitempty,startswith=.,excludes=/"`
}

// DownloadConfig holds the query parameter used by GET /download.
type DownloadConfig struct {
	Param   string `mapstructure:"param" yaml:"param" validate:"required"`
	Default string `mapstructure:"default" yaml:"default"`
}

// AttachmentConfig holds the optional fixed octet-stream download.
type AttachmentConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Filename string `mapstructure:"filename" yaml:"filename"`
	Route    string `mapstructure:"route" yaml:"route" validate:"omitempty,startswith=/"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
}

// DiagnosticsConfig holds runtime diagnostics settings.
type DiagnosticsConfig struct {
	Gops bool `mapstructure:"gops" yaml:"gops"`
}

// ResolverConfig returns the contentd resolver settings.
func (c *Config) ResolverConfig() contentd.ResolverConfig {
	return contentd.ResolverConfig{
		Param:     c.Download.Param,
		Default:   c.Download.Default,
		Extension: c.Storage.Extension,
	}
}

// ServiceConfig returns the contentd service settings.
func (c *Config) ServiceConfig() contentd.ServiceConfig {
	return contentd.ServiceConfig{
		Resolver:           c.ResolverConfig(),
		AttachmentPath:     c.Attachment.Path,
		AttachmentFilename: c.Attachment.Filename,
	}
}

// HandlerConfig returns the HTTP handler settings. The attachment route is
// only set when an attachment path is configured.
func (c *Config) HandlerConfig() contentdhttp.HandlerConfig {
	cfg := contentdhttp.HandlerConfig{
		MaxUploadSize: c.Server.MaxUploadSize,
		CORS:          c.CORS,
	}
	if c.Attachment.Path != "" {
		cfg.AttachmentRoute = c.Attachment.Route
	}
	return cfg
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"host":            "server.host",
	"port":            "server.port",
	"max-upload-size": "server.max_upload_size",
	"root":            "storage.path",
	"extension":       "storage.extension",
	"param":           "download.param",
	"default":         "download.default",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"gops":            "diagnostics.gops",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey, ok := flagToViperKey[f.Name]
		if !ok {
			return
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 9091)
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.extension", "")

	v.SetDefault("download.param", contentd.DefaultParam)
	v.SetDefault("download.default", contentd.DefaultValue)

	v.SetDefault("attachment.path", "")
	v.SetDefault("attachment.filename", "")
	v.SetDefault("attachment.route", contentdhttp.AttachmentPath)

	v.SetDefault("cors.enabled", false)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST"})
	v.SetDefault("cors.allowed_headers", []string{"*"})
	v.SetDefault("cors.exposed_headers", []string{contentdhttp.RequestIDHeader})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("diagnostics.gops", false)
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("CONTENTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
