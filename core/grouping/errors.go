package grouping

import "errors"

var (
	// ErrConfiguration indicates the requested group count cannot hold the
	// mandatory forecast segments.
	ErrConfiguration = errors.New("more segments than requested groups")

	// ErrInsufficientData indicates there are not enough forecast hours to
	// build or describe a schedule.
	ErrInsufficientData = errors.New("insufficient forecast hours")
)
