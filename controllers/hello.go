package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sagarc03/helloapi"
	helloapihttp "github.com/sagarc03/helloapi/http"
)

const (
	nameRules      = "required,max=64,alphanumunicode"
	maxRequestBody = 1 << 20
)

type GreetRequest struct {
	Name string `json:"name" validate:"required,max=64,alphanumunicode"`
}

type GreetResponse struct {
	Message string `json:"message"`
}

// HelloController greets callers by name.
type HelloController struct {
	validator *validator.Validate
}

func NewHelloController() *HelloController {
	return &HelloController{
		validator: validator.New(),
	}
}

func (c *HelloController) Routes() []helloapihttp.Route {
	return []helloapihttp.Route{
		{Method: http.MethodGet, Pattern: "/api/hello", Name: "hello.world", Action: c.world},
		{Method: http.MethodGet, Pattern: "/api/hello/{name}", Name: "hello.name", Action: c.byName},
		{Method: http.MethodPost, Pattern: "/api/hello", Name: "hello.create", Action: c.create},
	}
}

func greet(name string) GreetResponse {
	return GreetResponse{Message: fmt.Sprintf("Hello, %s!", name)}
}

func (c *HelloController) world(w http.ResponseWriter, _ *http.Request) error {
	return helloapihttp.WriteJSON(w, http.StatusOK, greet("World"))
}

func (c *HelloController) byName(w http.ResponseWriter, r *http.Request) error {
	name := chi.URLParam(r, "name")
	if err := c.validator.Var(name, nameRules); err != nil {
		return fmt.Errorf("%w: name must be 1 to 64 letters or digits", helloapi.ErrInvalidInput)
	}

	return helloapihttp.WriteJSON(w, http.StatusOK, greet(name))
}

func (c *HelloController) create(w http.ResponseWriter, r *http.Request) error {
	var req GreetRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", helloapi.ErrInvalidInput)
	}

	if err := c.validator.Struct(req); err != nil {
		return fmt.Errorf("%w: name must be 1 to 64 letters or digits", helloapi.ErrInvalidInput)
	}

	return helloapihttp.WriteJSON(w, http.StatusCreated, greet(req.Name))
}
