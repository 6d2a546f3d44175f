package controllers

import (
	"io"
	"net/http"

	"github.com/google/uuid"

	helloapihttp "github.com/sagarc03/helloapi/http"
)

// Greeting is the body served at the site root.
const Greeting = "Hello World!"

// HomeController serves the root greeting and the generic error page.
type HomeController struct{}

func NewHomeController() *HomeController {
	return &HomeController{}
}

func (c *HomeController) Routes() []helloapihttp.Route {
	return []helloapihttp.Route{
		{Method: http.MethodGet, Pattern: "/", Name: "home.index", Action: c.index},
		{Method: http.MethodGet, Pattern: helloapihttp.DefaultErrorPath, Name: "home.error", Action: c.errorPage},
	}
}

func (c *HomeController) index(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := io.WriteString(w, Greeting)
	return err
}

// errorPage renders the generic error page. It answers 500 when the request was
// re-executed after a failure and 200 when visited directly. Only reference
// IDs are shown.
func (c *HomeController) errorPage(w http.ResponseWriter, r *http.Request) error {
	requestID := helloapihttp.RequestIDFromContext(r.Context())

	info, failed := helloapihttp.ErrorInfoFromContext(r.Context())
	if !failed {
		helloapihttp.WriteErrorPage(w, http.StatusOK, requestID, "")
		return nil
	}

	if info.RequestID != "" {
		requestID = info.RequestID
	}
	var incidentID string
	if info.IncidentID != uuid.Nil {
		incidentID = info.IncidentID.String()
	}

	helloapihttp.WriteErrorPage(w, http.StatusInternalServerError, requestID, incidentID)
	return nil
}
