// Package http assembles the helloapi request pipeline.
//
// Controllers declare their routes, RegisterControllers turns them into an
// immutable RouteTable, and BuildPipeline wraps the table in the stages the
// environment calls for:
//
//	Development: DetailedErrorPage, Routing, Dispatch
//	Production:  GenericErrorHandler, TransportSecurityHeader, Routing, Dispatch
//
// Optional ambient stages (Tracing, RequestID, AccessLog, CORS) run before
// the core stages.
//
// # Failures
//
// An Action that returns nil has written its response. Errors wrapping
// helloapi.ErrNotFound, ErrInvalidInput or ErrUnauthorized are written as
// JSON error responses by dispatch. Any other error, and any panic, is an
// unhandled failure: the DetailedErrorPage stage renders it with its stack
// and request detail, the GenericErrorHandler stage re-executes the pipeline
// against the error path (or redirects to it) without exposing anything.
//
// Requests that match no route get 404, or 405 when the path exists for
// other methods. Neither is a failure.
//
// # Usage
//
//	routes, err := http.RegisterControllers(
//	    controllers.NewHomeController(),
//	    controllers.NewHelloController(),
//	)
//	if err != nil {
//	    return err
//	}
//	pipeline := http.BuildPipeline(helloapi.Production, routes, http.PipelineOptions{
//	    RequestID: true,
//	    AccessLog: true,
//	})
//	http.ListenAndServe(":5000", pipeline)
package http
