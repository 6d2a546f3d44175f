// Package controllers holds the helloapi controllers. Each controller
// declares its routes through Routes and is registered with
// http.RegisterControllers.
package controllers
