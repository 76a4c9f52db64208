// Package forecast builds the forecast-hour sequences produced by a model
// run for each output component.
package forecast

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates forecast settings that cannot produce a sequence.
var ErrInvalidConfig = errors.New("invalid forecast configuration")

// Component identifies a model output stream.
type Component string

const (
	Atmos Component = "atmos"
	Ocean Component = "ocean"
	Ice   Component = "ice"
	Wave  Component = "wave"
)

// Config holds the forecast length and output interval settings of an
// experiment.
type Config struct {
	FHMin int `json:"fhmin"`

	// Data assimilation cycle forecast.
	FHMax int `json:"fhmax"`
	FHOut int `json:"fhout"`

	// Free forecast with an optional high-frequency output window.
	FHMaxGFS   int `json:"fhmax_gfs"`
	FHOutGFS   int `json:"fhout_gfs"`
	FHMaxHFGFS int `json:"fhmax_hf_gfs"`
	FHOutHFGFS int `json:"fhout_hf_gfs"`

	FHOutOcn    int `json:"fhout_ocn"`
	FHOutOcnGFS int `json:"fhout_ocn_gfs"`
	FHOutIce    int `json:"fhout_ice"`
	FHOutIceGFS int `json:"fhout_ice_gfs"`
	FHOutWav    int `json:"fhout_wav"`
	FHOutHFWav  int `json:"fhout_hf_wav"`
	FHMaxHFWav  int `json:"fhmax_hf_wav"`

	// Segments are the forecast segment bounds, e.g. [0, 48, 120].
	Segments []int `json:"fcst_segments"`
}

// forComponent applies the component specific output overrides.
func (c Config) forComponent(comp Component) (Config, error) {
	switch comp {
	case Atmos, "":
	case Ocean:
		c.FHMaxHFGFS = 0
		c.FHOutHFGFS = c.FHOutOcnGFS
		c.FHOutGFS = c.FHOutOcnGFS
		c.FHOut = c.FHOutOcn
	case Ice:
		c.FHMaxHFGFS = 0
		c.FHOutHFGFS = c.FHOutIceGFS
		c.FHOutGFS = c.FHOutIceGFS
		c.FHOut = c.FHOutIce
	case Wave:
		c.FHOutHFGFS = c.FHOutHFWav
		c.FHMaxHFGFS = c.FHMaxHFWav
		c.FHOutGFS = c.FHOutWav
		c.FHOut = c.FHOutWav
	default:
		return c, fmt.Errorf("%w: unknown component %q", ErrInvalidConfig, comp)
	}
	return c, nil
}

// Hours returns the forecast hours written by run for the given component.
func Hours(run string, comp Component, cfg Config) ([]int, error) {
	c, err := cfg.forComponent(comp)
	if err != nil {
		return nil, err
	}
	switch run {
	case "gdas", "enkfgdas":
		return span(c.FHMin, c.FHMax, c.FHOut, "fhout")
	case "gfs", "gefs", "enkfgfs":
		hf, err := span(c.FHMin, c.FHMaxHFGFS, c.FHOutHFGFS, "fhout_hf_gfs")
		if err != nil {
			return nil, err
		}
		if len(hf) == 0 {
			return nil, fmt.Errorf("%w: empty high-frequency window [%d, %d]", ErrInvalidConfig, c.FHMin, c.FHMaxHFGFS)
		}
		rest, err := span(hf[len(hf)-1]+c.FHOutGFS, c.FHMaxGFS, c.FHOutGFS, "fhout_gfs")
		if err != nil {
			return nil, err
		}
		return append(hf, rest...), nil
	default:
		return nil, fmt.Errorf("%w: unknown run %q", ErrInvalidConfig, run)
	}
}

// span lists start, start+step, ... for every value below stop+step.
func span(start, stop, step int, name string) ([]int, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, name, step)
	}
	var out []int
	for h := start; h < stop+step; h += step {
		out = append(out, h)
	}
	return out, nil
}
