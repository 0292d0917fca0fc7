package routes

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/jobsched/pkg/qapi/services"
)

func RegisterAPI(api huma.API, svcs *services.Services, logger *slog.Logger) {
	if svcs == nil {
		svcs = services.EmptyServices()
	}
	if svcs.IAM != nil {
		api.UseMiddleware(svcs.IAM.Middleware(api))
	}

	RegisterIndex(api)
	RegisterHealth(api)
	RegisterIAM(api, svcs.IAM)
	RegisterPBS(api, svcs.Scheduler, logger)
}
