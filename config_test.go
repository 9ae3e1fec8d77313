package stockpile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name         string
		file         string
		body         string
		wantPageSize int
		wantCapacity int
		wantLevel    string
		wantErr      bool
	}{
		{
			name: "TOML",
			file: "stockpile.toml",
			body: `
[storage]
page_size = 1024
initial_capacity = 64

[logging]
level = "debug"
format = "json"
`,
			wantPageSize: 1024,
			wantCapacity: 64,
			wantLevel:    "debug",
		},
		{
			name: "YAML",
			file: "stockpile.yaml",
			body: `
storage:
  page_size: 256
logging:
  level: warn
`,
			wantPageSize: 256,
			wantCapacity: DefaultInitialCapacity,
			wantLevel:    "warn",
		},
		{
			name:         "Defaults",
			file:         "empty.yml",
			body:         "",
			wantPageSize: DefaultPageSize,
			wantCapacity: DefaultInitialCapacity,
		},
		{
			name:    "Unknown extension",
			file:    "stockpile.json",
			body:    "{}",
			wantErr: true,
		},
		{
			name:    "Malformed TOML",
			file:    "bad.toml",
			body:    "[storage\npage_size = ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}

			fc, err := LoadConfig(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if fc.Storage.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", fc.Storage.PageSize, tt.wantPageSize)
			}
			if fc.Storage.InitialCapacity != tt.wantCapacity {
				t.Errorf("InitialCapacity = %d, want %d", fc.Storage.InitialCapacity, tt.wantCapacity)
			}
			if fc.Logging.Level != tt.wantLevel {
				t.Errorf("Logging.Level = %q, want %q", fc.Logging.Level, tt.wantLevel)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig on missing file: err = %v", err)
	}
}

func TestConfigApply(t *testing.T) {
	defer func() {
		Config.SetPageSize(DefaultPageSize)
		Config.SetInitialCapacity(DefaultInitialCapacity)
		Config.SetLogger(nil)
	}()

	fc := defaults()
	fc.Storage.PageSize = 512
	fc.Logging = LoggingConfig{Level: "error", Format: "json"}
	if err := Config.Apply(fc); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if Config.PageSize() != 512 {
		t.Errorf("PageSize() = %d, want 512", Config.PageSize())
	}
	if NewPool[int]().sparse.PageSize() != 512 {
		t.Errorf("New pools ignore configured page size")
	}

	fc.Storage.PageSize = 500
	var cfgErr ConfigError
	if err := Config.Apply(fc); !errors.As(err, &cfgErr) || cfgErr.Field != "page_size" {
		t.Errorf("Apply with bad page size: err = %v", err)
	}
	if Config.PageSize() != 512 {
		t.Errorf("Rejected config changed page size to %d", Config.PageSize())
	}
}

func TestSetLoggerNil(t *testing.T) {
	Config.SetLogger(nil)
	if Config.Logger() == nil {
		t.Fatalf("Logger() is nil")
	}
	logger, err := NewLogger(LoggingConfig{Level: "not-a-level"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	Config.SetLogger(logger)
	defer Config.SetLogger(nil)
	if Config.Logger() != logger {
		t.Errorf("SetLogger did not install logger")
	}
}
