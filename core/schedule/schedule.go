// Package schedule derives the per-group metatask variables from a grouped
// forecast-hour partition.
package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nwp-workflow/taskgen/core/grouping"
)

// Entry describes one job group.
type Entry struct {
	Hours      []int  `json:"fhrs" yaml:"fhrs"`
	First      int    `json:"first" yaml:"first"`
	Last       int    `json:"last" yaml:"last"`
	Next       int    `json:"next" yaml:"next"`
	Label      string `json:"label" yaml:"label"`
	Segment    int    `json:"seg" yaml:"seg"`
	SegmentTag string `json:"seg_dep" yaml:"seg_dep"`
}

// Schedule is the read-only view of an ordered list of groups.
type Schedule struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Vars holds the space-separated variable lists substituted into a
// metatask definition. The encoding is consumed verbatim downstream.
type Vars struct {
	FhrList  string `json:"fhr_list" yaml:"fhr_list"`
	FhrLabel string `json:"fhr_label" yaml:"fhr_label"`
	SegDep   string `json:"seg_dep" yaml:"seg_dep"`
	Fhr3Last string `json:"fhr3_last" yaml:"fhr3_last"`
	Fhr3Next string `json:"fhr3_next" yaml:"fhr3_next"`
}

// Map returns the variables keyed by their metatask names.
func (v Vars) Map() map[string]string {
	return map[string]string{
		"fhr_list":  v.FhrList,
		"fhr_label": v.FhrLabel,
		"seg_dep":   v.SegDep,
		"fhr3_last": v.Fhr3Last,
		"fhr3_next": v.Fhr3Next,
	}
}

// Format builds a Schedule from groups. fullHours is the complete forecast
// hour sequence; its last step is used to extrapolate the hour following the
// final group.
func Format(groups []grouping.Group, fullHours []int) (*Schedule, error) {
	s := &Schedule{Entries: make([]Entry, 0, len(groups))}
	if len(groups) == 0 {
		return s, nil
	}
	if len(fullHours) < 2 {
		return nil, fmt.Errorf("%w: need two forecast hours to extrapolate, got %d",
			grouping.ErrInsufficientData, len(fullHours))
	}
	step := fullHours[len(fullHours)-1] - fullHours[len(fullHours)-2]

	for i, g := range groups {
		if len(g.Hours) == 0 {
			return nil, fmt.Errorf("%w: group %d is empty", grouping.ErrInsufficientData, i)
		}
		e := Entry{
			Hours:      g.Hours,
			First:      g.First(),
			Last:       g.Last(),
			Label:      label(g.Hours),
			Segment:    g.Segment,
			SegmentTag: fmt.Sprintf("seg%d", g.Segment),
		}
		if i > 0 {
			s.Entries[i-1].Next = e.First
		}
		s.Entries = append(s.Entries, e)
	}
	last := &s.Entries[len(s.Entries)-1]
	last.Next = last.Last + step
	return s, nil
}

func label(hours []int) string {
	if len(hours) > 1 {
		return fmt.Sprintf("f%03d-f%03d", hours[0], hours[len(hours)-1])
	}
	return fmt.Sprintf("f%03d", hours[0])
}

// LargestGroup returns the size of the biggest group.
func (s *Schedule) LargestGroup() int {
	n := 0
	for _, e := range s.Entries {
		n = max(n, len(e.Hours))
	}
	return n
}

// Vars renders the metatask variable lists.
func (s *Schedule) Vars() Vars {
	lists := make([]string, len(s.Entries))
	labels := make([]string, len(s.Entries))
	segs := make([]string, len(s.Entries))
	lasts := make([]string, len(s.Entries))
	nexts := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		hrs := make([]string, len(e.Hours))
		for j, h := range e.Hours {
			hrs[j] = strconv.Itoa(h)
		}
		lists[i] = strings.Join(hrs, ",")
		labels[i] = e.Label
		segs[i] = e.SegmentTag
		lasts[i] = fmt.Sprintf("%03d", e.Last)
		nexts[i] = fmt.Sprintf("%03d", e.Next)
	}
	return Vars{
		FhrList:  strings.Join(lists, " "),
		FhrLabel: strings.Join(labels, " "),
		SegDep:   strings.Join(segs, " "),
		Fhr3Last: strings.Join(lasts, " "),
		Fhr3Next: strings.Join(nexts, " "),
	}
}
