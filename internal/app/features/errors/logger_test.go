package errors_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/nexera-events/symphony/internal/app/features/errors"
	"github.com/nexera-events/symphony/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorLogger_Statuses(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	el := uierrors.NewErrorLogger(zap.New(core))
	boom := errors.New("boom")

	tests := []struct {
		name   string
		call   func(w http.ResponseWriter, r *http.Request)
		status int
		body   string
	}{
		{"server", func(w http.ResponseWriter, r *http.Request) { el.LogServerError(w, r, "db failed", boom, "") }, http.StatusInternalServerError, "A server error occurred."},
		{"bad request", func(w http.ResponseWriter, r *http.Request) { el.LogBadRequest(w, r, "decode", boom, "Invalid JSON.") }, http.StatusBadRequest, "Invalid JSON."},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) { el.LogForbidden(w, r, "nope", "No.") }, http.StatusForbidden, "No."},
		{"not found", func(w http.ResponseWriter, r *http.Request) { el.LogNotFound(w, r, "missing", "Task not found.") }, http.StatusNotFound, "Task not found."},
		{"conflict", func(w http.ResponseWriter, r *http.Request) { el.LogConflict(w, r, "dup", boom, "Name taken.") }, http.StatusConflict, "Name taken."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest(http.MethodGet, "/x", testutil.AdminIdentity())
			rec := testutil.NewRecorder()
			tt.call(rec, req)
			rec.AssertStatus(t, tt.status)
			rec.AssertJSONError(t, tt.body)
		})
	}

	if logs.Len() != len(tests) {
		t.Fatalf("logged %d entries, want %d", logs.Len(), len(tests))
	}
	first := logs.All()[0]
	if first.Level != zapcore.ErrorLevel {
		t.Errorf("server error level = %v", first.Level)
	}
	if _, ok := first.ContextMap()["user_id"]; !ok {
		t.Error("server error log missing user_id")
	}
}

func TestHandler_Fallbacks(t *testing.T) {
	h := uierrors.NewHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("NotFound status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed status = %d", rec.Code)
	}
}
