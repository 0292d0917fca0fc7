package iam

import (
	"context"
	"log/slog"
)

// Verifier checks a username and password.
type Verifier interface {
	Verify(ctx context.Context, username, password string) error
}

// IAMService authenticates requests with HTTP Basic credentials.
type IAMService struct {
	verifier Verifier
	logger   *slog.Logger
}

func NewIAMService(verifier Verifier, logger *slog.Logger) *IAMService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IAMService{verifier: verifier, logger: logger}
}
