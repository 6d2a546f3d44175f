package http_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	helloapihttp "github.com/sagarc03/helloapi/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
		want    string
	}{
		{"generated when missing", "", "generated"},
		{"reuses inbound", "abc-123", "abc-123"},
		{"trims inbound", "  abc-123  ", "abc-123"},
		{"keeps inbound at max length", strings.Repeat("a", 128), strings.Repeat("a", 128)},
		{"replaces too long inbound", strings.Repeat("a", 200), "generated"},
		{"replaces long multibyte inbound", strings.Repeat("a", 127) + "é", "generated"},
		{"replaces inbound with tab", "ab\tcd", "generated"},
		{"replaces inbound with control byte", "ab\x01cd", "generated"},
		{"replaces invalid utf-8", "ab\xffcd", "generated"},
		{"whitespace only is replaced", "   ", "generated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromContext string
			handler := helloapihttp.RequestIDMiddleware(func() string { return "generated" })(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					fromContext = helloapihttp.RequestIDFromContext(r.Context())
				}),
			)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set("X-Request-ID", tt.inbound)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, fromContext)
			assert.Equal(t, tt.want, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestRequestIDMiddleware_DefaultGeneratorUsesUUID(t *testing.T) {
	handler := helloapihttp.RequestIDMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestAccessLogMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	routes := testRoutes(t, helloapihttp.Route{
		Method: http.MethodGet, Pattern: "/api/hello/{name}", Action: textAction("hi"),
	})
	p := helloapihttp.BuildPipeline("development", routes, helloapihttp.PipelineOptions{
		RequestID:          true,
		RequestIDGenerator: func() string { return "req-42" },
		AccessLog:          true,
		Logger:             logger,
	})

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hello/gopher", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/hello/gopher", entry["path"])
	assert.Equal(t, "/api/hello/{name}", entry["route"])
	assert.EqualValues(t, 200, entry["status"])
	assert.EqualValues(t, 2, entry["bytes"])
	assert.Contains(t, entry, "duration")
}

func TestAccessLogMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		target string
		level  string
	}{
		{"/nope", "WARN"},
		{"/fail", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var buf bytes.Buffer
			p := helloapihttp.BuildPipeline("production", testRoutes(t), helloapihttp.PipelineOptions{
				AccessLog: true,
				Logger:    slog.New(slog.NewJSONHandler(&buf, nil)),
			})

			p.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.target, nil))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
		})
	}
}

func TestRoutingMiddleware(t *testing.T) {
	routes := testRoutes(t)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/", "/"},
		{http.MethodPost, "/items", "/items"},
		{http.MethodGet, "/items", ""},
		{http.MethodGet, "/nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var got string
			handler := helloapihttp.RoutingMiddleware(routes)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = helloapihttp.RouteFromContext(r.Context())
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	p := helloapihttp.BuildPipeline("production", testRoutes(t), helloapihttp.PipelineOptions{
		CORS: helloapihttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{"GET", "POST"},
		},
	})

	req := httptest.NewRequest(http.MethodOptions, "/items", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Less(t, rec.Code, http.StatusMultipleChoices)
}

func TestCORSMiddleware_ActualRequest(t *testing.T) {
	p := helloapihttp.BuildPipeline("production", testRoutes(t), helloapihttp.PipelineOptions{
		CORS: helloapihttp.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_Disabled(t *testing.T) {
	p := helloapihttp.BuildPipeline("production", testRoutes(t), helloapihttp.PipelineOptions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTracingMiddleware_PassesThrough(t *testing.T) {
	p := helloapihttp.BuildPipeline("production", testRoutes(t), helloapihttp.PipelineOptions{
		Tracing:     true,
		ServiceName: "helloapi-test",
	})

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World!", rec.Body.String())
}
