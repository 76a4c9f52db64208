// Package resources computes the batch scheduler request for a workflow task.
package resources

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidRequest indicates a task resource request that cannot be placed.
var ErrInvalidRequest = errors.New("invalid resource request")

// ServiceTasks run on the service queue and partition.
var ServiceTasks = []string{"arch", "earc", "stage_ic", "cleanup"}

const (
	SchedulerPBSPro = "pbspro"
	SchedulerSlurm  = "slurm"
)

// Host describes the batch system shared by every task.
type Host struct {
	Scheduler        string `json:"scheduler"`
	Account          string `json:"account"`
	Queue            string `json:"queue"`
	QueueService     string `json:"queue_service"`
	PartitionBatch   string `json:"partition_batch"`
	PartitionService string `json:"partition_service"`
	Reservation      string `json:"reservation"`
	Clusters         string `json:"clusters"`
	Debug            bool   `json:"debug"`
}

// Request is the per-task resource configuration.
type Request struct {
	Account        string `json:"account"`
	Walltime       string `json:"walltime"`
	NTasks         int    `json:"ntasks"`
	TasksPerNode   int    `json:"tasks_per_node"`
	ThreadsPerTask int    `json:"threads_per_task"`
	Memory         string `json:"memory"`
	Prepost        bool   `json:"prepost"`
	IsExclusive    bool   `json:"is_exclusive"`
}

// Resource is the scheduler request of one task.
type Resource struct {
	Account   string `json:"account" yaml:"account"`
	Walltime  string `json:"walltime" yaml:"walltime"`
	Nodes     int    `json:"nodes" yaml:"nodes"`
	NTasks    int    `json:"ntasks" yaml:"ntasks"`
	PPN       int    `json:"ppn" yaml:"ppn"`
	Threads   int    `json:"threads" yaml:"threads"`
	Memory    string `json:"memory,omitempty" yaml:"memory,omitempty"`
	Native    string `json:"native,omitempty" yaml:"native,omitempty"`
	Queue     string `json:"queue" yaml:"queue"`
	Partition string `json:"partition,omitempty" yaml:"partition,omitempty"`
}

// IsService reports whether task runs on the service queue.
func IsService(task string) bool { return slices.Contains(ServiceTasks, task) }

// Compute derives the scheduler request of task on host.
func Compute(task string, req Request, host Host) (Resource, error) {
	if req.TasksPerNode <= 0 {
		return Resource{}, fmt.Errorf("%w: %s: tasks_per_node must be positive", ErrInvalidRequest, task)
	}
	if req.NTasks <= 0 {
		return Resource{}, fmt.Errorf("%w: %s: ntasks must be positive", ErrInvalidRequest, task)
	}
	service := IsService(task)

	res := Resource{
		Account:  req.Account,
		Walltime: req.Walltime,
		Nodes:    (req.NTasks + req.TasksPerNode - 1) / req.TasksPerNode,
		NTasks:   req.NTasks,
		PPN:      req.TasksPerNode,
		Threads:  max(req.ThreadsPerTask, 1),
		Memory:   req.Memory,
		Queue:    host.Queue,
	}
	if res.Account == "" {
		res.Account = host.Account
	}
	if service {
		res.Queue = host.QueueService
	}

	switch host.Scheduler {
	case SchedulerPBSPro:
		if req.Prepost && res.Memory != "" {
			res.Memory += ":prepost=true"
		}
		res.Native = "-l place=vscatter"
		if host.Debug {
			res.Native = "-l debug=true,place=vscatter"
		}
		if req.IsExclusive {
			res.Native += ":exclhost"
		} else {
			res.Native += ":shared"
		}
	case SchedulerSlurm:
		res.Native = "--export=NONE"
		if req.IsExclusive {
			res.Native = "--exclusive"
		}
		if host.Reservation != "" && !service {
			res.Native += " --reservation=" + host.Reservation
		}
		if host.Clusters != "" && host.Clusters != "@CLUSTERS@" {
			res.Native += " --clusters=" + host.Clusters
		}
		res.Partition = host.PartitionBatch
		if service {
			res.Partition = host.PartitionService
		}
	}
	return res, nil
}
