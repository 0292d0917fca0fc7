package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const welcome = "jobsched: submit and inspect PBS jobs over HTTP"

type RootOutput struct {
	Body struct {
		Message string `json:"message" example:"jobsched: submit and inspect PBS jobs over HTTP" doc:"Welcome message"`
	}
}

func RegisterIndex(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Root endpoint",
		Description: "Returns a welcome message",
		Tags:        []string{TagGeneral.String()},
	}, func(ctx context.Context, input *struct{}) (*RootOutput, error) {
		resp := &RootOutput{}
		resp.Body.Message = welcome
		return resp, nil
	})
}
