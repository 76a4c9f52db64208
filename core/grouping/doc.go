// Package grouping splits a sequence of forecast hours into job groups.
//
// Forecast hours are first cut into segments at the configured breakpoints.
// A segment is never split across a group boundary, so every group belongs to
// exactly one segment. Each segment starts with a single group; the remaining
// groups are handed out one at a time to the segment currently carrying the
// most hours per group. Each segment is then split into near-equal contiguous
// chunks.
//
// Usage example:
//
//	groups, err := grouping.Partition(hours, 4, []int{14})
//	if errors.Is(err, grouping.ErrConfiguration) {
//	        // more segments than groups
//	}
//
// Partition is pure and safe for concurrent use.
package grouping
