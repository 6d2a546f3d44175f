package http

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type requestIDKey struct{}

type routeInfoKey struct{}

type failureKey struct{}

type errorInfoKey struct{}

// RequestIDFromContext returns the request ID set by the RequestID stage.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// routeInfo is shared by reference so stages outside Routing (access log)
// can read the pattern after the request completes.
type routeInfo struct {
	pattern string
}

// RouteFromContext returns the pattern of the matched route, or "" when the
// Routing stage found no route.
func RouteFromContext(ctx context.Context) string {
	if info, ok := ctx.Value(routeInfoKey{}).(*routeInfo); ok {
		return info.pattern
	}
	return ""
}

func ensureRouteInfo(ctx context.Context) (context.Context, *routeInfo) {
	if info, ok := ctx.Value(routeInfoKey{}).(*routeInfo); ok {
		return ctx, info
	}
	info := &routeInfo{}
	return context.WithValue(ctx, routeInfoKey{}, info), info
}

// PanicError wraps a value recovered from a panicking action.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// failure is the slot an error stage places in the request context; the
// dispatch adapter fills it when an action fails.
type failure struct {
	err   error
	stack []byte
}

func withFailureSlot(ctx context.Context) (context.Context, *failure) {
	f := &failure{}
	return context.WithValue(ctx, failureKey{}, f), f
}

// reportFailure stores err in the nearest error stage's slot. It returns
// false when the pipeline has no error stage.
func reportFailure(ctx context.Context, err error, stack []byte) bool {
	f, ok := ctx.Value(failureKey{}).(*failure)
	if !ok {
		return false
	}
	if f.err == nil {
		f.err = err
		f.stack = stack
	}
	return true
}

// ErrorInfo describes the failure that caused a request to be re-executed
// against the error path.
type ErrorInfo struct {
	RequestID      string
	OriginalMethod string
	OriginalPath   string
	IncidentID     uuid.UUID
	Err            error
}

// ErrorInfoFromContext returns the failure being handled, if the request
// was re-executed by the generic error handler.
func ErrorInfoFromContext(ctx context.Context) (ErrorInfo, bool) {
	info, ok := ctx.Value(errorInfoKey{}).(ErrorInfo)
	return info, ok
}

func withErrorInfo(ctx context.Context, info ErrorInfo) context.Context {
	return context.WithValue(ctx, errorInfoKey{}, info)
}
