// Package helloapi provides the core types of a minimal web API service:
// the environment flag that selects the request pipeline, and the optional
// incident log that records unhandled request failures.
//
// The HTTP surface (controller registration, the request pipeline and its
// error stages) lives in the http package; controllers live in the
// controllers package.
//
// # Environment
//
// The service runs in one of two environments, chosen once at startup:
//
//   - Development: unhandled failures are rendered with full diagnostic detail
//   - Production: unhandled failures are forwarded to a generic error page and
//     every response carries a Strict-Transport-Security header
//
// Parse a configured value with ParseEnvironment. Anything other than
// "development" (case-insensitive) is treated as Production.
//
// # Incidents
//
// When a database is configured, unhandled failures are recorded as
// incidents so operators can correlate the request ID shown on the generic
// error page with the failure detail:
//
//	service := helloapi.NewIncidentService(repo, helloapi.Production)
//
//	incident, err := service.Record(ctx, helloapi.Incident{
//	    RequestID: requestID,
//	    Method:    r.Method,
//	    Path:      r.URL.Path,
//	    Message:   err.Error(),
//	})
//
// See the database package for the SQLite and PostgreSQL repositories.
package helloapi
