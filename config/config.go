package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/nwp-workflow/taskgen/core/forecast"
	"github.com/nwp-workflow/taskgen/core/metrics"
	"github.com/nwp-workflow/taskgen/core/resources"
	"github.com/nwp-workflow/taskgen/core/taskgen"
)

// EnvPrefix marks environment variables overriding file settings.
// TASKGEN_FORECAST__FHMAX_GFS sets forecast.fhmax_gfs.
const EnvPrefix = "TASKGEN_"

type Config struct {
	Run      string               `json:"run"`
	LogLevel string               `json:"log_level"`
	Forecast forecast.Config      `json:"forecast"`
	Host     resources.Host       `json:"host"`
	Tasks    []taskgen.TaskConfig `json:"tasks"`
	Ledger   LedgerConfig         `json:"ledger"`
	Metrics  metrics.Config       `json:"metrics"`
	Output   OutputConfig         `json:"output"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Ledger.SetDefaults()
	cfg.Output.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings every command relies on.
func (c Config) Validate() error {
	if c.Run == "" {
		return fmt.Errorf("run is required")
	}
	switch c.Host.Scheduler {
	case "", resources.SchedulerPBSPro, resources.SchedulerSlurm:
	default:
		return fmt.Errorf("unknown scheduler %s", c.Host.Scheduler)
	}
	for _, t := range c.Tasks {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	if err := c.Ledger.Validate(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

// Generator returns the part of the configuration driving generation.
func (c Config) Generator() taskgen.Config {
	return taskgen.Config{
		Run:      c.Run,
		Forecast: c.Forecast,
		Host:     c.Host,
		Tasks:    c.Tasks,
	}
}
