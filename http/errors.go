package http

import "errors"

// ErrInvalidRoute is returned when a controller declares a route that cannot be registered.
var ErrInvalidRoute = errors.New("invalid route")
