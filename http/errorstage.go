package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/helloapi"
)

// DefaultErrorPath is where the generic error handler sends failed requests.
const DefaultErrorPath = "/Home/Error"

// ErrorMode selects how the generic error handler reaches the error path.
type ErrorMode string

const (
	// ErrorModeReexecute re-runs the rest of the pipeline as GET <path> and
	// responds 500 with its output.
	ErrorModeReexecute ErrorMode = "reexecute"
	// ErrorModeRedirect responds 302 Found with Location: <path>.
	ErrorModeRedirect ErrorMode = "redirect"
)

func (m ErrorMode) IsValid() bool {
	return m == ErrorModeReexecute || m == ErrorModeRedirect
}

// IncidentRecorder persists unhandled failures.
type IncidentRecorder interface {
	Record(ctx context.Context, incident helloapi.Incident) (helloapi.Incident, error)
}

const recordTimeout = 5 * time.Second

// serveCatching runs next with a fresh failure slot and recovers panics into it.
func serveCatching(next http.Handler, w http.ResponseWriter, r *http.Request) *failure {
	ctx, f := withFailureSlot(r.Context())

	func() {
		defer func() {
			if rvr := recover(); rvr != nil {
				//nolint:err113,errorlint // this must compare directly
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				if f.err == nil {
					f.err = &PanicError{Value: rvr}
					f.stack = debug.Stack()
				}
			}
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	}()

	return f
}

func recordIncident(r *http.Request, recorder IncidentRecorder, err error) uuid.UUID {
	if recorder == nil {
		return uuid.Nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), recordTimeout)
	defer cancel()

	incident, recErr := recorder.Record(ctx, helloapi.Incident{
		RequestID: RequestIDFromContext(r.Context()),
		Method:    r.Method,
		Path:      r.URL.Path,
		Message:   err.Error(),
	})
	if recErr != nil {
		slog.ErrorContext(r.Context(), "failed to record incident", "error", recErr)
		return uuid.Nil
	}
	return incident.ID
}

// DeveloperErrorPageMiddleware renders unhandled failures with diagnostic
// detail: error, type, stack, and the request.
func DeveloperErrorPageMiddleware(recorder IncidentRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newResponseRecorder(w)

			f := serveCatching(next, rec, r)
			if f.err == nil {
				return
			}

			slog.ErrorContext(r.Context(), "unhandled request failure",
				"error", f.err,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", RequestIDFromContext(r.Context()),
			)
			recordIncident(r, recorder, f.err)

			if rec.wroteHeader {
				slog.WarnContext(r.Context(), "response already started, cannot render error page", "path", r.URL.Path)
				return
			}

			resetResponse(rec.Header())
			writeDeveloperPage(rec, r, f)
		})
	}
}

// GenericErrorHandlerConfig configures GenericErrorHandlerMiddleware.
type GenericErrorHandlerConfig struct {
	Path     string
	Mode     ErrorMode
	Routes   *RouteTable
	Recorder IncidentRecorder
}

// GenericErrorHandlerMiddleware hides unhandled failures behind the error
// path. No failure detail reaches the client.
func GenericErrorHandlerMiddleware(cfg GenericErrorHandlerConfig) func(http.Handler) http.Handler {
	path := cfg.Path
	if path == "" {
		path = DefaultErrorPath
	}
	mode := cfg.Mode
	if !mode.IsValid() {
		mode = ErrorModeReexecute
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newResponseRecorder(w)

			f := serveCatching(next, rec, r)
			if f.err == nil {
				return
			}

			requestID := RequestIDFromContext(r.Context())
			slog.ErrorContext(r.Context(), "unhandled request failure",
				"error", f.err,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", requestID,
			)
			incidentID := recordIncident(r, cfg.Recorder, f.err)

			if rec.wroteHeader {
				slog.WarnContext(r.Context(), "response already started, cannot run error handler", "path", r.URL.Path)
				return
			}

			resetResponse(rec.Header())

			if mode == ErrorModeRedirect {
				rec.Header().Set("Location", path)
				rec.WriteHeader(http.StatusFound)
				return
			}

			if cfg.Routes != nil {
				if _, ok := cfg.Routes.Lookup(http.MethodGet, path); !ok {
					slog.ErrorContext(r.Context(), "error path is not routable", "error_path", path)
					WriteError(rec, http.StatusInternalServerError, "internal_error", "Internal server error")
					return
				}
			}

			info := ErrorInfo{
				RequestID:      requestID,
				OriginalMethod: r.Method,
				OriginalPath:   r.URL.Path,
				IncidentID:     incidentID,
				Err:            f.err,
			}

			errReq := newErrorRequest(r, path, info)
			reexec := serveCatching(next, &statusOverrideWriter{ResponseWriter: rec, code: http.StatusInternalServerError}, errReq)
			if reexec.err != nil {
				slog.ErrorContext(r.Context(), "error handler failed",
					"error", errors.Join(f.err, reexec.err),
					"error_path", path,
				)
				if !rec.wroteHeader {
					WriteError(rec, http.StatusInternalServerError, "internal_error", "Internal server error")
				}
				return
			}

			// The error page wrote nothing.
			if !rec.wroteHeader {
				rec.WriteHeader(http.StatusInternalServerError)
			}
		})
	}
}

func newErrorRequest(r *http.Request, path string, info ErrorInfo) *http.Request {
	ctx := withErrorInfo(r.Context(), info)

	errReq := r.Clone(ctx)
	errReq.Method = http.MethodGet
	errReq.URL = &url.URL{Path: path}
	errReq.RequestURI = path
	errReq.Body = http.NoBody
	errReq.ContentLength = 0
	errReq.Header.Del("Content-Type")
	errReq.Header.Del("Content-Length")

	return errReq
}
