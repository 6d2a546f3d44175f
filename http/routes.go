package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Action handles a request routed to a controller.
//
// Returning nil means the action wrote the response. Errors matching the
// helloapi sentinels (see IsHandledError) become 4xx JSON responses; any
// other error is an unhandled failure and is reported to the error stage of
// the pipeline, the same as a panic.
type Action func(w http.ResponseWriter, r *http.Request) error

// Route binds a method and chi pattern to an action.
type Route struct {
	Method  string
	Pattern string
	Name    string
	Action  Action
}

// Controller groups related routes.
type Controller interface {
	Routes() []Route
}

// RouteTableConfig overrides the responses for requests no route matches.
type RouteTableConfig struct {
	// NotFound serves requests whose path matches no route.
	NotFound http.Handler
	// MethodNotAllowed serves requests whose path matches a route registered
	// for other methods. The Allow header is set before it runs.
	MethodNotAllowed http.Handler
}

// RouteTable is the immutable lookup built by RegisterControllers.
type RouteTable struct {
	mux    *chi.Mux
	routes []Route
}

var supportedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// RegisterControllers builds a route table from the routes of each
// controller, with JSON 404 and 405 responses for unmatched requests.
func RegisterControllers(controllers ...Controller) (*RouteTable, error) {
	return RegisterControllersWith(RouteTableConfig{}, controllers...)
}

// RegisterControllersWith is RegisterControllers with custom unmatched-route handlers.
func RegisterControllersWith(cfg RouteTableConfig, controllers ...Controller) (*RouteTable, error) {
	t := &RouteTable{mux: chi.NewRouter()}

	seen := make(map[string]struct{})
	for _, c := range controllers {
		if c == nil {
			continue
		}
		for _, route := range c.Routes() {
			if err := validateRoute(route); err != nil {
				return nil, fmt.Errorf("register controllers: %w", err)
			}

			key := route.Method + " " + route.Pattern
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("register controllers: %w: duplicate route %s", ErrInvalidRoute, key)
			}
			seen[key] = struct{}{}

			if err := t.handle(route); err != nil {
				return nil, fmt.Errorf("register controllers: %w", err)
			}
			t.routes = append(t.routes, route)
		}
	}

	notFound := cfg.NotFound
	if notFound == nil {
		notFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusNotFound, "not_found", "Route not found")
		})
	}
	t.mux.NotFound(notFound.ServeHTTP)

	methodNotAllowed := cfg.MethodNotAllowed
	if methodNotAllowed == nil {
		methodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		})
	}
	t.mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		if allowed := t.allowedMethods(r.URL.Path); len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
		}
		methodNotAllowed.ServeHTTP(w, r)
	})

	return t, nil
}

func validateRoute(route Route) error {
	if !slices.Contains(supportedMethods, route.Method) {
		return fmt.Errorf("%w: unsupported method %q for %s", ErrInvalidRoute, route.Method, route.Pattern)
	}
	if route.Pattern == "" || route.Pattern[0] != '/' {
		return fmt.Errorf("%w: pattern %q must start with /", ErrInvalidRoute, route.Pattern)
	}
	if route.Action == nil {
		return fmt.Errorf("%w: nil action for %s %s", ErrInvalidRoute, route.Method, route.Pattern)
	}
	return nil
}

// handle registers the route on the mux. chi panics on malformed patterns,
// which is turned into an error here.
func (t *RouteTable) handle(route Route) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("%w: %s %s: %v", ErrInvalidRoute, route.Method, route.Pattern, rvr)
		}
	}()

	t.mux.Method(route.Method, route.Pattern, dispatch(route.Action))
	return nil
}

// Routes returns the registered routes in registration order.
func (t *RouteTable) Routes() []Route {
	return slices.Clone(t.routes)
}

// Lookup resolves a request to the pattern of the route that would serve it.
func (t *RouteTable) Lookup(method, path string) (string, bool) {
	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, method, path) {
		return "", false
	}
	return rctx.RoutePattern(), true
}

func (t *RouteTable) allowedMethods(path string) []string {
	var allowed []string
	for _, m := range supportedMethods {
		if t.mux.Match(chi.NewRouteContext(), m, path) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

func (t *RouteTable) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.mux.ServeHTTP(w, r)
}

// dispatch adapts an Action to an http.Handler.
func dispatch(action Action) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := action(w, r)
		if err == nil {
			return
		}

		if IsHandledError(err) {
			HandleError(w, err)
			return
		}

		if reportFailure(r.Context(), err, debug.Stack()) {
			return
		}

		// No error stage in the pipeline.
		slog.ErrorContext(r.Context(), "unhandled request failure", "error", err, "path", r.URL.Path)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	})
}
