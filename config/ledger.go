package config

import (
	"fmt"

	"github.com/nwp-workflow/taskgen/core/ledger"
)

// LedgerConfig defines settings for generation history storage and rotation.
type LedgerConfig struct {
	// Backend selects the store type: "jsonl", "sqlite", "memory" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *LedgerConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" && (c.Backend == "jsonl" || c.Backend == "sqlite") {
		c.Path = "taskgen-ledger." + c.Backend
	}
}

// Validate checks mandatory fields.
func (c LedgerConfig) Validate() error {
	switch c.Backend {
	case "none", "memory":
		return nil
	case "jsonl", "sqlite":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// Options converts the settings for ledger.Open.
func (c LedgerConfig) Options() ledger.Options {
	return ledger.Options{
		Backend:    c.Backend,
		Path:       c.Path,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}
