// Package config loads form990 settings from config.yaml and FORM990_* env vars.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Form990 Form990Config `yaml:"form990" mapstructure:"form990"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects where processed rows are saved.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver" validate:"oneof=postgres sqlite none"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url" validate:"required_if=Driver postgres"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns" validate:"gte=0"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns" validate:"gte=0"`
}

// SourceConfig selects where e-file return documents come from.
type SourceConfig struct {
	Kind        string `yaml:"kind" mapstructure:"kind" validate:"oneof=http dir"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url" validate:"required_if=Kind http,omitempty,url"`
	Dir         string `yaml:"dir" mapstructure:"dir" validate:"required_if=Kind dir"`
	CacheDir    string `yaml:"cache_dir" mapstructure:"cache_dir"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gt=0"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

// Form990Config holds processing defaults.
type Form990Config struct {
	Form      string `yaml:"form" mapstructure:"form" validate:"oneof=990 base"`
	RemapFile string `yaml:"remap_file" mapstructure:"remap_file"`
	EmitEmpty bool   `yaml:"emit_empty" mapstructure:"emit_empty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"loglevel"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FORM990")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "none")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "form990.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("source.kind", "http")
	v.SetDefault("source.base_url", "https://s3.amazonaws.com/irs-form-990")
	v.SetDefault("source.dir", "")
	v.SetDefault("source.cache_dir", "")
	v.SetDefault("source.user_agent", "form990-cli/1.0")
	v.SetDefault("source.timeout_secs", 60)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("form990.form", "990")
	v.SetDefault("form990.remap_file", "")
	v.SetDefault("form990.emit_empty", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := zapcore.ParseLevel(fl.Field().String())
		return err == nil
	})
	// Report mapstructure keys so messages match config.yaml.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("mapstructure")
	})
	return v
}

// Validate checks the configuration. All failing keys are reported together.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return eris.Wrap(err, "config: validate")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		msgs[i] = fmt.Sprintf("%s fails %q", key, fe.Tag())
	}
	return eris.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
