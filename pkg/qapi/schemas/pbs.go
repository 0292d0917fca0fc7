package schemas

import "github.com/quatton/jobsched/pkg/job"

// SubmitJobResponse is returned by POST /pbs/qsub.
type SubmitJobResponse struct {
	Body struct {
		JobID string `json:"job_id" example:"100.pbs00" doc:"Scheduler job identifier"`
	}
}

// JobStatResponse is returned by GET /pbs/qstat/{job_id}.
type JobStatResponse struct {
	Body *job.JobStat
}
