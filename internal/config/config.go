package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level qifsync.yaml configuration.
type Config struct {
	Files    FilesConfig    `yaml:"files"`
	Matching MatchingConfig `yaml:"matching"`
	Git      GitConfig      `yaml:"git"`
}

// FilesConfig names the input and output locations.
type FilesConfig struct {
	Ledger      string `yaml:"ledger"`                 // QIF input
	Spreadsheet string `yaml:"spreadsheet"`            // CSV input
	LedgerOut   string `yaml:"ledger_out,omitempty"`   // defaults to ledger
	SheetOut    string `yaml:"sheet_out,omitempty"`    // defaults to <spreadsheet>_normalized.csv
}

// MatchingConfig tunes the matching engines.
type MatchingConfig struct {
	RatioThreshold float64 `yaml:"ratio_threshold"` // category similarity cutoff
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a qifsync.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Matching.RatioThreshold == 0 {
		cfg.Matching.RatioThreshold = 0.84
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(ledger, spreadsheet string) *Config {
	return &Config{
		Files: FilesConfig{
			Ledger:      ledger,
			Spreadsheet: spreadsheet,
		},
		Matching: MatchingConfig{
			RatioThreshold: 0.84,
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "qifsync",
			AuthorEmail: "qifsync@localhost",
		},
	}
}
