package config

import "fmt"

// OutputConfig controls where the generated document is written.
type OutputConfig struct {
	// Format is "yaml" or "json".
	Format string `json:"format"`
	// Path of the document; empty writes to stdout.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = "yaml"
	}
}

// Validate checks the output format.
func (c OutputConfig) Validate() error {
	if c.Format != "yaml" && c.Format != "json" {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}
