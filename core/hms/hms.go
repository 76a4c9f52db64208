// Package hms handles HH:MM:SS walltime strings.
package hms

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for malformed HH:MM:SS strings or factors.
var ErrInvalidDuration = errors.New("invalid HH:MM:SS duration")

// Parse converts an HH:MM:SS string into a duration. Hours may exceed 24.
func Parse(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		vals[i] = v
	}
	if vals[1] > 59 || vals[2] > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	return time.Duration(vals[0])*time.Hour +
		time.Duration(vals[1])*time.Minute +
		time.Duration(vals[2])*time.Second, nil
}

// Format renders d as HH:MM:SS, truncating sub-second precision.
func Format(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// Multiply scales an HH:MM:SS duration by factor and rounds the result to
// whole seconds.
func Multiply(s string, factor float64) (string, error) {
	if factor < 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return "", fmt.Errorf("%w: factor %v", ErrInvalidDuration, factor)
	}
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	secs := math.Round(d.Seconds() * factor)
	return Format(time.Duration(secs) * time.Second), nil
}
