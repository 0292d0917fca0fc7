package iam

import "context"

type ctxKey string

const principalKey ctxKey = "jobsched.principal"

// Principal is the authenticated caller.
type Principal struct {
	Username string
}

func (s *IAMService) Principal(ctx context.Context) (*Principal, bool) {
	if v := ctx.Value(principalKey); v != nil {
		if p, ok := v.(*Principal); ok {
			return p, true
		}
	}
	return nil, false
}

func (s *IAMService) Get(ctx context.Context) (*Principal, error) {
	if p, ok := s.Principal(ctx); ok && p != nil {
		return p, nil
	}
	return nil, nil
}
