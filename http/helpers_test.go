package http_test

import (
	"errors"
	"io"
	"net/http"
	"testing"

	helloapihttp "github.com/sagarc03/helloapi/http"
	"github.com/stretchr/testify/require"
)

type stubController struct {
	routes []helloapihttp.Route
}

func (c stubController) Routes() []helloapihttp.Route {
	return c.routes
}

func textAction(body string) helloapihttp.Action {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err := io.WriteString(w, body)
		return err
	}
}

var errBoom = errors.New("boom: database exploded")

// testRoutes is the route table most pipeline tests run against.
//
//	GET  /             -> "Hello World!"
//	GET  /fail         -> returns errBoom
//	GET  /panic        -> panics
//	GET  /Home/Error   -> echoes ErrorInfo, status 200
//	POST /items        -> 201
func testRoutes(t *testing.T, extra ...helloapihttp.Route) *helloapihttp.RouteTable {
	t.Helper()

	routes := []helloapihttp.Route{
		{Method: http.MethodGet, Pattern: "/", Name: "index", Action: textAction("Hello World!")},
		{Method: http.MethodGet, Pattern: "/fail", Name: "fail", Action: func(w http.ResponseWriter, r *http.Request) error {
			return errBoom
		}},
		{Method: http.MethodGet, Pattern: "/panic", Name: "panic", Action: func(w http.ResponseWriter, r *http.Request) error {
			panic("kaboom")
		}},
		{Method: http.MethodGet, Pattern: "/Home/Error", Name: "error", Action: func(w http.ResponseWriter, r *http.Request) error {
			info, ok := helloapihttp.ErrorInfoFromContext(r.Context())
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			if !ok {
				_, err := io.WriteString(w, "error page")
				return err
			}
			_, err := io.WriteString(w, "error page for "+info.OriginalMethod+" "+info.OriginalPath+" at "+r.URL.Path)
			return err
		}},
		{Method: http.MethodPost, Pattern: "/items", Name: "items.create", Action: func(w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusCreated)
			return nil
		}},
	}
	routes = append(routes, extra...)

	table, err := helloapihttp.RegisterControllers(stubController{routes: routes})
	require.NoError(t, err)
	return table
}
