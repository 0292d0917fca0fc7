package qapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
)

func TestNewErrorBody(t *testing.T) {
	cases := []struct {
		name   string
		status int
		msg    string
		errs   []error
		want   ErrorBody
	}{
		{"detail", 404, "job '1' not found", nil, ErrorBody{404, "Not Found: job '1' not found"}},
		{"no detail", 401, "", nil, ErrorBody{401, "Unauthorized"}},
		{"405 drops detail", 405, "POST only", nil, ErrorBody{405, "Method Not Allowed"}},
		{"422 becomes 400", 422, "validation failed", []error{errors.New("expected object")}, ErrorBody{400, "Bad Request: expected object"}},
		{"msg and errs", 500, "boom", []error{errors.New("disk")}, ErrorBody{500, "Internal Server Error: boom; disk"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewErrorBody(tc.status, tc.msg, tc.errs...); *got != tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, *got)
			}
		})
	}
}

func TestNewApi_Prefix(t *testing.T) {
	a := NewApi(Options{Prefix: "/pbs-api", Quiet: true})
	huma.Get(a.Api, "/ping", func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		return nil, nil
	})

	cases := map[string]int{
		"/pbs-api/ping":    http.StatusNoContent,
		"/ping":            http.StatusNotFound,
		"/pbs-api/missing": http.StatusNotFound,
	}
	for path, want := range cases {
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("GET %s: expected %d, got %d", path, want, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pbs-api/missing", nil))
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Description != "Not Found" {
		t.Errorf("Expected a JSON error body, got %q", rec.Body.String())
	}
}

func TestNewApi_SecurityScheme(t *testing.T) {
	a := NewApi(Options{Quiet: true})
	scheme, ok := a.Api.OpenAPI().Components.SecuritySchemes["basic"]
	if !ok || scheme.Scheme != "basic" {
		t.Errorf("Expected a basic security scheme, got %+v", a.Api.OpenAPI().Components.SecuritySchemes)
	}
}
