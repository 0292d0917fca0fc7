package main

import "github.com/quatton/jobsched/apps/jobsched/cmd"

func main() {
	cmd.Execute()
}
