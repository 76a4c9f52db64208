package grouping

import (
	"fmt"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Segment is a breakpoint-delimited run of forecast hours.
type Segment struct {
	// ID is the index of the breakpoint interval the hours fall into.
	ID    int
	Hours []int
}

// Group is a contiguous run of forecast hours assigned to one job.
type Group struct {
	Hours   []int `json:"fhrs" yaml:"fhrs"`
	Segment int   `json:"seg" yaml:"seg"`
}

// First returns the first forecast hour of the group.
func (g Group) First() int { return g.Hours[0] }

// Last returns the last forecast hour of the group.
func (g Group) Last() int { return g.Hours[len(g.Hours)-1] }

// Breakpoints returns the interior bounds of the configured forecast
// segments. Segment bounds [0, 48, 120] yield the breakpoint [48].
func Breakpoints(fcstSegments []int) []int {
	if len(fcstSegments) < 3 {
		return nil
	}
	return slices.Clone(fcstSegments[1 : len(fcstSegments)-1])
}

// SplitSegments cuts hours at each breakpoint. An hour equal to a breakpoint
// ends its segment. Breakpoints at or past the last hour are ignored and cuts
// that would leave a segment empty are skipped.
func SplitSegments(hours, breakpoints []int) []Segment {
	if len(hours) == 0 {
		return nil
	}
	maxHour := hours[len(hours)-1]
	var segs []Segment
	start, id := 0, 0
	for _, b := range breakpoints {
		if b >= maxHour {
			continue
		}
		cut := sort.Search(len(hours), func(i int) bool { return hours[i] > b })
		if cut > start {
			segs = append(segs, Segment{ID: id, Hours: slices.Clone(hours[start:cut])})
			start = cut
		}
		id++
	}
	return append(segs, Segment{ID: id, Hours: slices.Clone(hours[start:])})
}

// Partition splits hours into ngroups contiguous groups that never cross a
// breakpoint. ngroups is clamped to len(hours).
func Partition(hours []int, ngroups int, breakpoints []int) ([]Group, error) {
	if nsegs := len(breakpoints) + 1; nsegs > ngroups {
		return nil, fmt.Errorf("%w: %d segments, %d groups", ErrConfiguration, nsegs, ngroups)
	}
	if len(hours) == 0 {
		return nil, fmt.Errorf("%w: no forecast hours to group", ErrInsufficientData)
	}
	if ngroups > len(hours) {
		ngroups = len(hours)
	}

	segs := SplitSegments(hours, breakpoints)
	lens := make([]int, len(segs))
	for i, s := range segs {
		lens[i] = len(s.Hours)
	}
	counts := allocate(lens, ngroups)

	groups := make([]Group, 0, ngroups)
	for i, s := range segs {
		for _, chunk := range splitBalanced(s.Hours, counts[i]) {
			groups = append(groups, Group{Hours: chunk, Segment: s.ID})
		}
	}
	return groups, nil
}

// allocate gives every segment one group and hands the remaining groups to
// the segment with the most hours per group, first index winning ties.
func allocate(lens []int, ngroups int) []int {
	counts := make([]int, len(lens))
	for i := range counts {
		counts[i] = 1
	}
	ratios := make([]float64, len(lens))
	for extra := ngroups - len(lens); extra > 0; extra-- {
		for i, n := range lens {
			ratios[i] = float64(n) / float64(counts[i])
		}
		counts[floats.MaxIdx(ratios)]++
	}
	return counts
}

// splitBalanced cuts items into k contiguous chunks. The first len%k chunks
// hold one extra item.
func splitBalanced(items []int, k int) [][]int {
	size, rem := len(items)/k, len(items)%k
	chunks := make([][]int, 0, k)
	start := 0
	for i := 0; i < k; i++ {
		end := start + size
		if i < rem {
			end++
		}
		chunks = append(chunks, items[start:end:end])
		start = end
	}
	return chunks
}
