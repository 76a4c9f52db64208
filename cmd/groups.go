package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nwp-workflow/taskgen/app"
	"github.com/nwp-workflow/taskgen/core/grouping"
	"github.com/nwp-workflow/taskgen/core/schedule"
)

type groupsOptions struct {
	hours       []int
	fhmin       int
	fhmax       int
	fhout       int
	ngroups     int
	breakpoints []int
	format      string
}

func newGroupsCmd() *cobra.Command {
	var o groupsOptions
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Partition forecast hours into job groups",
		Example: "  taskgen groups --fhmax 120 --fhout 6 --ngroups 8 --breakpoints 48\n" +
			"  taskgen groups --fhrs 0,3,6,9,12 --ngroups 2 -f vars",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroups(cmd, o)
		},
	}
	f := cmd.Flags()
	f.IntSliceVar(&o.hours, "fhrs", nil, "explicit forecast hours (overrides --fhmin/--fhmax/--fhout)")
	f.IntVar(&o.fhmin, "fhmin", 0, "first forecast hour")
	f.IntVar(&o.fhmax, "fhmax", 0, "last forecast hour")
	f.IntVar(&o.fhout, "fhout", 1, "forecast hour interval")
	f.IntVarP(&o.ngroups, "ngroups", "n", 1, "maximum number of groups")
	f.IntSliceVarP(&o.breakpoints, "breakpoints", "b", nil, "segment breakpoints")
	f.StringVarP(&o.format, "format", "f", "text", "output format (text, vars, yaml or json)")
	return cmd
}

func runGroups(cmd *cobra.Command, o groupsOptions) error {
	hours := o.hours
	if len(hours) == 0 {
		if o.fhout <= 0 {
			return fmt.Errorf("fhout must be positive")
		}
		for h := o.fhmin; h <= o.fhmax; h += o.fhout {
			hours = append(hours, h)
		}
	}
	groups, err := grouping.Partition(hours, o.ngroups, o.breakpoints)
	if err != nil {
		return err
	}
	sched, err := schedule.Format(groups, hours)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch o.format {
	case "text":
		for _, e := range sched.Entries {
			hrs := make([]string, len(e.Hours))
			for i, h := range e.Hours {
				hrs[i] = fmt.Sprint(h)
			}
			if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", e.Label, e.SegmentTag, strings.Join(hrs, ",")); err != nil {
				return err
			}
		}
		return nil
	case "vars":
		v := sched.Vars()
		for _, kv := range [][2]string{
			{"fhr_list", v.FhrList},
			{"fhr_label", v.FhrLabel},
			{"seg_dep", v.SegDep},
			{"fhr3_last", v.Fhr3Last},
			{"fhr3_next", v.Fhr3Next},
		} {
			if _, err := fmt.Fprintf(out, "%s=%q\n", kv[0], kv[1]); err != nil {
				return err
			}
		}
		return nil
	default:
		return app.Encode(out, sched, o.format)
	}
}
