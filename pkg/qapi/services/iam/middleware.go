package iam

import (
	"errors"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/quatton/jobsched/pkg/qauth"
)

// SchemeBasic is the security scheme name operations list to require
// authentication.
const SchemeBasic = "basic"

// Middleware rejects requests to operations secured with SchemeBasic unless
// they carry valid credentials. The handler is never called for rejected
// requests.
func (s *IAMService) Middleware(api huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !requiresBasic(ctx.Operation()) {
			next(ctx)
			return
		}

		r, _ := humachi.Unwrap(ctx)
		user, pass, ok := r.BasicAuth()
		if !ok {
			s.reject(api, ctx, "missing credentials")
			return
		}

		if err := s.verifier.Verify(ctx.Context(), user, pass); err != nil {
			if errors.Is(err, qauth.ErrInvalidCredentials) {
				s.logger.Warn("invalid credentials", "user", user, "path", r.URL.Path)
			} else {
				s.logger.Error("credential check failed", "user", user, "error", err)
			}
			s.reject(api, ctx, "invalid credentials")
			return
		}

		s.logger.Debug("authenticated user", "user", user)
		next(huma.WithValue(ctx, principalKey, &Principal{Username: user}))
	}
}

func (s *IAMService) reject(api huma.API, ctx huma.Context, msg string) {
	ctx.SetHeader("WWW-Authenticate", `Basic realm="jobsched", charset="UTF-8"`)
	huma.WriteErr(api, ctx, http.StatusUnauthorized, msg) //nolint:errcheck
}

func requiresBasic(op *huma.Operation) bool {
	if op == nil {
		return false
	}
	return slices.ContainsFunc(op.Security, func(req map[string][]string) bool {
		_, ok := req[SchemeBasic]
		return ok
	})
}
