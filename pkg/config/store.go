package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/apocsb/Gitsidian/internal/fsutil"
)

// Store reads and writes the configuration document at a fixed path.
type Store struct {
	Path   string
	Logger *slog.Logger
}

// NewStore returns a Store for the given file path. The logger may be
// nil.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{Path: path, Logger: logger}
}

// Load reads and validates the configuration. A missing file yields an
// empty configuration, not an error. A version mismatch is logged and
// tolerated; invalid JSON and validation failures are errors.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return &Config{Version: Version}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", s.Path, err)
	}
	if cfg.Version != Version {
		if s.Logger != nil {
			s.Logger.Warn("config version mismatch",
				"found", cfg.Version, "expected", Version, "path", s.Path)
		}
		if cfg.Version == 0 {
			cfg.Version = Version
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range cfg.Repos {
		if r.CreatedAt == "" {
			r.CreatedAt = now
		}
		if r.UpdatedAt == "" {
			r.UpdatedAt = now
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", s.Path, err)
	}
	return &cfg, nil
}

// Save rewrites the whole configuration file atomically, creating the
// config directory on demand.
func (s *Store) Save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.Path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
