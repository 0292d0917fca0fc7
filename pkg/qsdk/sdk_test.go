package qsdk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quatton/jobsched/pkg/job"
	"github.com/quatton/jobsched/pkg/qsdk/qerr"
	"github.com/zalando/go-keyring"
)

func newGateway(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if u, p, ok := r.BasicAuth(); !ok || u != "alice" || p != "s3cret" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(ErrorBody{Code: 401, Description: "Unauthorized: invalid credentials"})
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("POST /pbs/qsub", authed(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Header.Get("Content-Type") != "application/json" || len(body) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorBody{Code: 400, Description: "Bad Request: empty body"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"job_id": "100.pbs00"})
	}))
	mux.HandleFunc("GET /pbs/qstat/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "7.pbs01" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ErrorBody{Code: 404, Description: "Not Found: job '" + r.PathValue("id") + "' not found"})
			return
		}
		w.Write([]byte(`{"job_id":"7.pbs01","name":"STDIN","status":"R","extra":{"Submit_Host":"nn01"}}`))
	}))
	mux.HandleFunc("GET /me", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"username":"alice"}`))
	}))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSdk_Submit(t *testing.T) {
	srv := newGateway(t)
	sdk := New(srv.URL+"/", "alice", "s3cret")

	id, err := sdk.Submit(context.Background(), []byte(`{"submit_args":"-- /bin/true"}`))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if id != "100.pbs00" {
		t.Errorf("Expected 100.pbs00, got %q", id)
	}

	_, err = sdk.Submit(context.Background(), []byte{})
	if !qerr.IsCode(err, qerr.CodeBadRequest) {
		t.Errorf("Expected bad_request, got %v", err)
	}
}

func TestSdk_Stat(t *testing.T) {
	srv := newGateway(t)
	sdk := New(srv.URL, "alice", "s3cret")

	st, err := sdk.Stat(context.Background(), "7.pbs01")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if st.JobID != "7.pbs01" || st.Status == nil || *st.Status != job.StatusRunning {
		t.Errorf("Unexpected status %+v", st)
	}
	if st.Extra["Submit_Host"] != "nn01" {
		t.Errorf("Expected extra to survive, got %v", st.Extra)
	}

	_, err = sdk.Stat(context.Background(), "8.pbs01")
	if !qerr.IsCode(err, qerr.CodeNotFound) {
		t.Fatalf("Expected not_found, got %v", err)
	}
	if want := "not_found: Not Found: job '8.pbs01' not found"; err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestSdk_Unauthorized(t *testing.T) {
	srv := newGateway(t)

	for _, sdk := range []*Sdk{New(srv.URL, "alice", "wrong"), New(srv.URL, "", "")} {
		if _, err := sdk.Me(context.Background()); !qerr.IsCode(err, qerr.CodeUnauthorized) {
			t.Errorf("Expected unauthorized, got %v", err)
		}
	}

	me, err := New(srv.URL, "alice", "s3cret").Me(context.Background())
	if err != nil || me.Username != "alice" {
		t.Errorf("Expected alice, got %+v, %v", me, err)
	}
}

func TestSdk_PublicAndUnknown(t *testing.T) {
	srv := newGateway(t)
	sdk := New(srv.URL, "", "")

	status, err := sdk.Health(context.Background())
	if err != nil || status != "ok" {
		t.Errorf("Expected ok, got %q, %v", status, err)
	}

	var out struct{}
	err = sdk.do(context.Background(), http.MethodGet, "/broken", nil, &out)
	if !qerr.IsCode(err, qerr.CodeUnknown) {
		t.Errorf("Expected unknown, got %v", err)
	}
}

func TestNewSdk_KeyringPassword(t *testing.T) {
	keyring.MockInit()
	srv := newGateway(t)

	if err := SavePassword(srv.URL+"/", "alice", "s3cret"); err != nil {
		t.Fatal(err)
	}

	sdk, err := NewSdk(&Config{BaseURL: srv.URL, Username: "alice"})
	if err != nil {
		t.Fatalf("NewSdk failed: %v", err)
	}
	if _, err := sdk.Me(context.Background()); err != nil {
		t.Errorf("Expected stored password to authenticate, got %v", err)
	}

	if err := sdk.ClearCredentials(); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPassword(srv.URL, "alice"); err != ErrNoCredentials {
		t.Errorf("Expected ErrNoCredentials after logout, got %v", err)
	}
	if err := DeletePassword(srv.URL, "alice"); err != nil {
		t.Errorf("Deleting a missing entry should succeed, got %v", err)
	}
}
