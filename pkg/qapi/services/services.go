package services

import (
	"log/slog"

	"github.com/quatton/jobsched/pkg/qapi/config"
	"github.com/quatton/jobsched/pkg/qapi/services/iam"
	"github.com/quatton/jobsched/pkg/sched"
)

// Services are built once per process and handed to route registration.
type Services struct {
	IAM       *iam.IAMService
	Scheduler sched.Scheduler
}

// NewServices wires the PBS adapter to a CommandExecutor configured from
// cfg and authenticates requests with verifier.
func NewServices(cfg *config.EnvConfig, verifier iam.Verifier, logger *slog.Logger) *Services {
	executor := sched.NewCommandExecutor(
		sched.WithTimeout(cfg.ExecTimeout),
		sched.WithLogger(logger),
	)
	return &Services{
		IAM:       iam.NewIAMService(verifier, logger),
		Scheduler: sched.NewPBS(cfg.PBSExecPath, cfg.PBSServer, executor, logger),
	}
}

// EmptyServices is enough to register routes for OpenAPI generation.
func EmptyServices() *Services {
	return &Services{
		IAM:       nil,
		Scheduler: nil,
	}
}
