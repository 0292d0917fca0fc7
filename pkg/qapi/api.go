package qapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	Title   = "jobsched"
	Version = "1.0.0"
)

type Api struct {
	Api    huma.API
	Router *chi.Mux
}

// Options configures NewApi.
type Options struct {
	// Prefix mounts every route below it, e.g. "/pbs-api". Empty means "/".
	Prefix string
	// ServerURL is advertised in the OpenAPI document.
	ServerURL string
	// Quiet disables the request log.
	Quiet bool
}

func NewApi(opts Options) *Api {
	installErrorModel()

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	if !opts.Quiet {
		router.Use(middleware.Logger)
	}
	router.Use(middleware.Recoverer)

	config := huma.DefaultConfig(Title, Version)
	config.Info.Description = "HTTP gateway to the PBS qsub and qstat commands"

	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basic": {
			Type:        "http",
			Scheme:      "basic",
			Description: "HTTP Basic credentials of an API account",
		},
	}
	if opts.ServerURL != "" {
		config.Servers = []*huma.Server{{URL: strings.TrimRight(opts.ServerURL, "/") + opts.Prefix}}
	}

	var api huma.API
	mount := func(r chi.Router) {
		r.NotFound(writeStatus(http.StatusNotFound))
		r.MethodNotAllowed(writeStatus(http.StatusMethodNotAllowed))
		api = humachi.New(r, config)
	}
	if opts.Prefix == "" || opts.Prefix == "/" {
		mount(router)
	} else {
		router.Route(opts.Prefix, mount)
	}

	return &Api{Api: api, Router: router}
}

// ErrorBody is the body of every non-2xx response. Description is the
// status text, followed by ": " and the detail when there is one.
type ErrorBody struct {
	Code        int    `json:"code" example:"404" doc:"HTTP status code"`
	Description string `json:"description" example:"Not Found: job '1.pbs' not found" doc:"Status text and detail"`
}

func (e *ErrorBody) Error() string {
	return e.Description
}

func (e *ErrorBody) GetStatus() int {
	return e.Code
}

// NewErrorBody builds an ErrorBody. Validation failures (422) are reported
// as 400.
func NewErrorBody(status int, msg string, errs ...error) *ErrorBody {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}

	details := make([]string, 0, len(errs)+1)
	if msg != "" && (len(errs) == 0 || msg != "validation failed") {
		details = append(details, msg)
	}
	for _, err := range errs {
		if err != nil {
			details = append(details, err.Error())
		}
	}

	desc := http.StatusText(status)
	if len(details) > 0 && status != http.StatusMethodNotAllowed {
		desc += ": " + strings.Join(details, "; ")
	}
	return &ErrorBody{Code: status, Description: desc}
}

var errorModelOnce sync.Once

func installErrorModel() {
	errorModelOnce.Do(func() {
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			return NewErrorBody(status, msg, errs...)
		}
	})
}

// writeStatus answers requests that never reach an operation.
func writeStatus(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(NewErrorBody(status, "")) //nolint:errcheck
	}
}
