package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/jobsched/pkg/qapi/schemas"
	"github.com/quatton/jobsched/pkg/qapi/services/iam"
)

func RegisterIAM(api huma.API, svc *iam.IAMService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Get current user",
		Description: "Returns the account the Basic credentials belong to",
		Tags:        []string{TagIam.String()},
		Security:    BasicAuth,
	}, func(ctx context.Context, input *struct{}) (*schemas.MeResponse, error) {
		user, _ := svc.Get(ctx)
		if user == nil {
			return nil, huma.Error401Unauthorized("authentication required")
		}
		resp := &schemas.MeResponse{}
		resp.Body.Username = user.Username
		return resp, nil
	})
}
