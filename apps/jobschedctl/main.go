package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/quatton/jobsched/apps/jobschedctl/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "jobschedctl crashed: %v\n", r)
			if os.Getenv("JOBSCHED_DEBUG") != "" {
				debug.PrintStack()
			}
			os.Exit(2)
		}
	}()

	cmd.Execute()
}
