package stockpile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds global configuration for pools and storages. Changes apply to
// pools and storages created afterwards.
var Config config = config{
	pageSize:        DefaultPageSize,
	initialCapacity: DefaultInitialCapacity,
	logger:          zap.NewNop(),
}

const (
	DefaultPageSize        = 4096
	DefaultInitialCapacity = 1024
)

type config struct {
	pageSize        int
	initialCapacity int
	logger          *zap.Logger
}

// FileConfig is the on-disk configuration, TOML or YAML.
type FileConfig struct {
	Storage StorageConfig `toml:"storage" yaml:"storage"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

type StorageConfig struct {
	PageSize        int `toml:"page_size" yaml:"page_size"`
	InitialCapacity int `toml:"initial_capacity" yaml:"initial_capacity"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// SetPageSize sets the sparse page size. It must be a power of two.
func (c *config) SetPageSize(n int) error {
	if n <= 0 || n&(n-1) != 0 {
		return ConfigError{Field: "page_size", Reason: "must be a positive power of two"}
	}
	c.pageSize = n
	return nil
}

// SetInitialCapacity sets how many entities a new storage preallocates.
func (c *config) SetInitialCapacity(n int) error {
	if n < 0 {
		return ConfigError{Field: "initial_capacity", Reason: "must not be negative"}
	}
	c.initialCapacity = n
	return nil
}

// SetLogger replaces the logger; nil restores the no-op logger.
func (c *config) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.logger = l
}

func (c *config) PageSize() int {
	return c.pageSize
}

func (c *config) InitialCapacity() int {
	return c.initialCapacity
}

func (c *config) Logger() *zap.Logger {
	return c.logger
}

// Apply validates fc and installs it, building a logger when fc.Logging names
// a level.
func (c *config) Apply(fc *FileConfig) error {
	next := *c
	if err := next.SetPageSize(fc.Storage.PageSize); err != nil {
		return err
	}
	if err := next.SetInitialCapacity(fc.Storage.InitialCapacity); err != nil {
		return err
	}
	if fc.Logging.Level != "" {
		logger, err := NewLogger(fc.Logging)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		next.SetLogger(logger)
	}
	*c = next
	return nil
}

// LoadConfig reads a .toml, .yaml or .yml file over the defaults.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	fc := defaults()
	switch filepath.Ext(path) {
	case ".toml":
		err = toml.Unmarshal(data, fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		return nil, ConfigError{Field: "path", Reason: "unsupported extension " + filepath.Ext(path)}
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

func defaults() *FileConfig {
	return &FileConfig{
		Storage: StorageConfig{
			PageSize:        DefaultPageSize,
			InitialCapacity: DefaultInitialCapacity,
		},
	}
}

// NewLogger builds a production (json) or development (console) zap logger.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
