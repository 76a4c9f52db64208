package main

import (
	"os"

	"github.com/nwp-workflow/taskgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
