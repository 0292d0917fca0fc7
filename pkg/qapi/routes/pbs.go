package routes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/jobsched/pkg/attrs"
	"github.com/quatton/jobsched/pkg/job"
	"github.com/quatton/jobsched/pkg/qapi/schemas"
	"github.com/quatton/jobsched/pkg/sched"
)

// SubmitJobInput takes the raw body: submissions accept PBS aliases and
// free-form extras, which a typed body would reject.
type SubmitJobInput struct {
	RawBody []byte
}

type GetJobInput struct {
	JobID string `path:"job_id" doc:"Scheduler job identifier, e.g. 100.pbs00"`
}

// RegisterPBS registers the qsub and qstat routes
func RegisterPBS(api huma.API, scheduler sched.Scheduler, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	submitSchema := api.OpenAPI().Components.Schemas.Schema(reflect.TypeOf(job.JobSubmit{}), true, "JobSubmit")

	huma.Register(api, huma.Operation{
		OperationID: "qsub",
		Method:      http.MethodPost,
		Path:        "/pbs/qsub",
		Summary:     "Submit a job",
		Description: "Validates the submission, renders it as qsub options and runs qsub. " +
			"Fields may be given by name or by PBS attribute name; unknown keys under extra are passed with -W.",
		Tags:     []string{TagPBS.String()},
		Security: BasicAuth,
		RequestBody: &huma.RequestBody{
			Required: true,
			Content: map[string]*huma.MediaType{
				"application/json": {Schema: submitSchema},
			},
		},
		SkipValidateBody: true,
		Errors:           []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *SubmitJobInput) (*schemas.SubmitJobResponse, error) {
		bag, err := job.DecodeJSON(bytes.NewReader(input.RawBody))
		if err != nil {
			return nil, toHTTPError(logger, "qsub", err)
		}
		js, err := job.ParseSubmit(bag)
		if err != nil {
			return nil, toHTTPError(logger, "qsub", err)
		}

		id, err := scheduler.Submit(ctx, js)
		if err != nil {
			return nil, toHTTPError(logger, "qsub", err)
		}

		resp := &schemas.SubmitJobResponse{}
		resp.Body.JobID = id
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "qstat",
		Method:      http.MethodGet,
		Path:        "/pbs/qstat/{job_id}",
		Summary:     "Get job status",
		Description: "Runs qstat for the job, finished jobs included. Attributes without a named field are returned under extra by their PBS name.",
		Tags:        []string{TagPBS.String()},
		Security:    BasicAuth,
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *GetJobInput) (*schemas.JobStatResponse, error) {
		st, err := scheduler.Stat(ctx, input.JobID)
		if err != nil {
			return nil, toHTTPError(logger, "qstat", err)
		}
		if st == nil {
			return nil, huma.Error404NotFound(fmt.Sprintf("job '%s' not found", input.JobID))
		}
		return &schemas.JobStatResponse{Body: st}, nil
	})
}

// toHTTPError maps domain errors onto response statuses.
func toHTTPError(logger *slog.Logger, op string, err error) error {
	var (
		malformed *sched.MalformedOutput
		invalid   *job.ValidationError
		cmdErr    *sched.CommandError
	)
	switch {
	case errors.As(err, &malformed):
		logger.Error("unexpected scheduler output", "op", op, "error", err, "output", malformed.Output)
		return huma.Error500InternalServerError("scheduler returned malformed output")
	case errors.Is(err, attrs.ErrSchemaMismatch):
		logger.Error("schema mismatch", "op", op, "error", err)
		return huma.Error500InternalServerError("schema mismatch")
	case errors.As(err, &invalid):
		logger.Info("rejected job", "op", op, "problems", len(invalid.Problems))
		return huma.Error400BadRequest(strings.Join(invalid.Problems, "; "))
	case errors.As(err, &cmdErr):
		logger.Warn("scheduler command failed", "op", op, "code", cmdErr.Code, "error", cmdErr)
		return huma.Error400BadRequest(cmdErr.Error())
	default:
		logger.Error("request failed", "op", op, "error", err)
		return huma.Error500InternalServerError("unexpected error")
	}
}
