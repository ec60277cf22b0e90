// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// ErrorLogger logs a failed request with zap and writes the JSON error
// body the client sees. msg is for operators; userMsg is for the client.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger. A nil logger discards log output.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := auth.CurrentIdentity(r); id.Present() {
		fields = append(fields, zap.String("user_id", id.ID.Hex()))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	return fields
}

// LogServerError logs at error level and answers 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Error(msg, e.fields(r, err)...)
	if userMsg == "" {
		userMsg = "A server error occurred."
	}
	jsonutil.Error(w, http.StatusInternalServerError, userMsg)
}

// LogBadRequest logs at info level and answers 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Info(msg, e.fields(r, err)...)
	jsonutil.Error(w, http.StatusBadRequest, userMsg)
}

// LogForbidden logs at warn level and answers 403.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string, userMsg string) {
	e.log.Warn(msg, e.fields(r, nil)...)
	jsonutil.Error(w, http.StatusForbidden, userMsg)
}

// LogNotFound logs at debug level and answers 404.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, msg string, userMsg string) {
	e.log.Debug(msg, e.fields(r, nil)...)
	jsonutil.Error(w, http.StatusNotFound, userMsg)
}

// LogConflict logs at info level and answers 409.
func (e *ErrorLogger) LogConflict(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Info(msg, e.fields(r, err)...)
	jsonutil.Error(w, http.StatusConflict, userMsg)
}
