package taskgen

import (
	"errors"
	"fmt"

	"github.com/nwp-workflow/taskgen/core/forecast"
	"github.com/nwp-workflow/taskgen/core/resources"
)

// TaskConfig describes one forecast-hour driven task.
type TaskConfig struct {
	Name      string             `json:"name" yaml:"name"`
	Component forecast.Component `json:"component" yaml:"component"`
	// MaxTasks caps the number of job groups generated for the task.
	MaxTasks int `json:"max_tasks" yaml:"max_tasks"`
	// ScaleWalltime multiplies the walltime by the size of the largest group.
	ScaleWalltime bool              `json:"scale_walltime" yaml:"scale_walltime"`
	Command       string            `json:"command" yaml:"command"`
	Dependency    string            `json:"dependency" yaml:"dependency"`
	Resources     resources.Request `json:"resources" yaml:"resources"`
}

// Validate checks the task settings that cannot be caught later.
func (t TaskConfig) Validate() error {
	if t.Name == "" {
		return errors.New("task name required")
	}
	if t.MaxTasks <= 0 {
		return fmt.Errorf("task %s: max_tasks must be positive", t.Name)
	}
	return nil
}

// Config is everything the generator needs for one run.
type Config struct {
	Run      string
	Forecast forecast.Config
	Host     resources.Host
	Tasks    []TaskConfig
}
