package http

import (
	"log/slog"
	"net/http"

	"github.com/sagarc03/helloapi"
)

// Stage names as reported by Pipeline.Stages.
const (
	StageTracing                 = "Tracing"
	StageRequestID               = "RequestID"
	StageAccessLog               = "AccessLog"
	StageCORS                    = "CORS"
	StageDetailedErrorPage       = "DetailedErrorPage"
	StageGenericErrorHandler     = "GenericErrorHandler"
	StageTransportSecurityHeader = "TransportSecurityHeader"
	StageRouting                 = "Routing"
	StageDispatch                = "Dispatch"
)

// Stage is a named middleware in the pipeline.
type Stage struct {
	Name       string
	Middleware func(http.Handler) http.Handler
}

// PipelineOptions configures BuildPipeline. The zero value yields exactly the
// core stages with default settings.
type PipelineOptions struct {
	// ErrorPath is the generic error handler target. Defaults to DefaultErrorPath.
	ErrorPath string
	// ErrorMode defaults to ErrorModeReexecute.
	ErrorMode ErrorMode
	HSTS      HSTSConfig

	Tracing     bool
	ServiceName string

	RequestID bool
	// RequestIDGenerator overrides UUID generation when RequestID is set.
	RequestIDGenerator func() string

	AccessLog bool
	Logger    *slog.Logger

	CORS CORSConfig

	// Incidents, when set, records unhandled failures.
	Incidents IncidentRecorder
}

// Pipeline is the request pipeline: an ordered list of stages ending in
// dispatch against the route table. It is immutable once built.
type Pipeline struct {
	env     helloapi.Environment
	stages  []Stage
	handler http.Handler
}

// BuildPipeline composes the pipeline for env.
//
// Development: [DetailedErrorPage, Routing, Dispatch]
// Production:  [GenericErrorHandler, TransportSecurityHeader, Routing, Dispatch]
//
// Enabled ambient stages (Tracing, RequestID, AccessLog, CORS) run before the
// core stages, in that order.
func BuildPipeline(env helloapi.Environment, routes *RouteTable, opts PipelineOptions) *Pipeline {
	if !env.IsValid() {
		env = helloapi.Production
	}

	var stages []Stage

	if opts.Tracing {
		stages = append(stages, Stage{Name: StageTracing, Middleware: TracingMiddleware(opts.ServiceName)})
	}
	if opts.RequestID {
		stages = append(stages, Stage{Name: StageRequestID, Middleware: RequestIDMiddleware(opts.RequestIDGenerator)})
	}
	if opts.AccessLog {
		stages = append(stages, Stage{Name: StageAccessLog, Middleware: AccessLogMiddleware(opts.Logger)})
	}
	if opts.CORS.Enabled {
		stages = append(stages, Stage{Name: StageCORS, Middleware: CORSMiddleware(opts.CORS)})
	}

	if env.IsDevelopment() {
		stages = append(stages, Stage{Name: StageDetailedErrorPage, Middleware: DeveloperErrorPageMiddleware(opts.Incidents)})
	} else {
		errorPath := opts.ErrorPath
		if errorPath == "" {
			errorPath = DefaultErrorPath
		}
		if opts.ErrorMode != ErrorModeRedirect {
			if _, ok := routes.Lookup(http.MethodGet, errorPath); !ok {
				slog.Warn("error path is not routable, failures will get a plain 500", "error_path", errorPath)
			}
		}

		stages = append(stages,
			Stage{Name: StageGenericErrorHandler, Middleware: GenericErrorHandlerMiddleware(GenericErrorHandlerConfig{
				Path:     errorPath,
				Mode:     opts.ErrorMode,
				Routes:   routes,
				Recorder: opts.Incidents,
			})},
			Stage{Name: StageTransportSecurityHeader, Middleware: HSTSMiddleware(opts.HSTS)},
		)
	}

	stages = append(stages, Stage{Name: StageRouting, Middleware: RoutingMiddleware(routes)})

	var handler http.Handler = routes
	for i := len(stages) - 1; i >= 0; i-- {
		handler = stages[i].Middleware(handler)
	}

	return &Pipeline{
		env:     env,
		stages:  stages,
		handler: handler,
	}
}

// Stages returns the stage names in execution order, ending with Dispatch.
func (p *Pipeline) Stages() []string {
	names := make([]string, 0, len(p.stages)+1)
	for _, s := range p.stages {
		names = append(names, s.Name)
	}
	return append(names, StageDispatch)
}

// Environment returns the environment the pipeline was built for.
func (p *Pipeline) Environment() helloapi.Environment {
	return p.env
}

func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}
