package qsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/quatton/jobsched/pkg/job"
	"github.com/quatton/jobsched/pkg/qsdk/qerr"
)

// Sdk is a small client for the gateway with Basic credentials baked in.
// It provides the surface CLI commands need so they don't wire keyring,
// client and headers themselves.
type Sdk struct {
	BaseURL  string
	Username string
	Password string

	client *http.Client
}

// ErrorBody mirrors the gateway's error response.
type ErrorBody struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// Me describes the authenticated account.
type Me struct {
	Username string `json:"username"`
}

// NewSdk builds a client from cfg, reading the password for cfg.Username
// from the keyring. A missing keyring entry leaves the password empty; the
// server answers 401 in that case.
func NewSdk(cfg *Config) (*Sdk, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	sdk := New(cfg.BaseURL, cfg.Username, "")
	sdk.client.Timeout = cfg.Timeout
	if cfg.Username != "" {
		pw, err := LoadPassword(cfg.BaseURL, cfg.Username)
		if err != nil && !errors.Is(err, ErrNoCredentials) {
			return nil, err
		}
		sdk.Password = pw
	}
	return sdk, nil
}

// New builds a client with explicit credentials.
func New(baseURL, username, password string) *Sdk {
	return &Sdk{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		client:   &http.Client{},
	}
}

// ClearCredentials removes the stored password and the in-memory copy.
func (s *Sdk) ClearCredentials() error {
	if s == nil || s.Username == "" {
		return nil
	}
	s.Password = ""
	return DeletePassword(s.BaseURL, s.Username)
}

// Submit posts a raw JSON submission and returns the job id.
func (s *Sdk) Submit(ctx context.Context, submission []byte) (string, error) {
	var out struct {
		JobID string `json:"job_id"`
	}
	if err := s.do(ctx, http.MethodPost, "/pbs/qsub", submission, &out); err != nil {
		return "", err
	}
	return out.JobID, nil
}

// Stat returns the status of jobID. An unknown job is a qerr.CodeNotFound
// error.
func (s *Sdk) Stat(ctx context.Context, jobID string) (*job.JobStat, error) {
	var out job.JobStat
	if err := s.do(ctx, http.MethodGet, "/pbs/qstat/"+url.PathEscape(jobID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me verifies the credentials.
func (s *Sdk) Me(ctx context.Context) (*Me, error) {
	var out Me
	if err := s.do(ctx, http.MethodGet, "/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports the gateway status string.
func (s *Sdk) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := s.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (s *Sdk) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+path, reader)
	if err != nil {
		return qerr.New(qerr.CodeUnknown, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if s.Username != "" {
		req.SetBasicAuth(s.Username, s.Password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return qerr.New(qerr.CodeUnknown, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return qerr.New(qerr.CodeUnknown, err)
	}

	if resp.StatusCode >= 300 {
		return qerr.New(qerr.FromStatus(resp.StatusCode), responseError(resp.StatusCode, data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return qerr.New(qerr.CodeUnknown, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func responseError(status int, data []byte) error {
	var eb ErrorBody
	if err := json.Unmarshal(data, &eb); err == nil && eb.Description != "" {
		return errors.New(eb.Description)
	}
	return fmt.Errorf("unexpected status %d", status)
}
