package http

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
)

//nolint:gochecknoglobals // read-only lookup
var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
}

func maskHeaders(headers http.Header) http.Header {
	result := headers.Clone()
	for key := range result {
		if _, found := sensitiveHeaders[strings.ToLower(key)]; found {
			result.Set(key, "***")
		}
	}
	return result
}

// developerPage is the data rendered by the detailed error page.
type developerPage struct {
	Message   string
	Type      string
	Stack     string
	Method    string
	Path      string
	Query     string
	RequestID string
	Headers   []headerLine
}

type headerLine struct {
	Name  string
	Value string
}

func newDeveloperPage(r *http.Request, f *failure) developerPage {
	errType := fmt.Sprintf("%T", f.err)
	if pe, ok := f.err.(*PanicError); ok {
		errType = fmt.Sprintf("panic(%T)", pe.Value)
	}

	masked := maskHeaders(r.Header)
	names := make([]string, 0, len(masked))
	for name := range masked {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]headerLine, 0, len(names))
	for _, name := range names {
		headers = append(headers, headerLine{Name: name, Value: strings.Join(masked.Values(name), ", ")})
	}

	return developerPage{
		Message:   f.err.Error(),
		Type:      errType,
		Stack:     string(f.stack),
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.RawQuery,
		RequestID: RequestIDFromContext(r.Context()),
		Headers:   headers,
	}
}

var developerPageTemplate = template.Must(template.New("developer").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Internal Server Error</title></head>
<body>
<h1>An unhandled exception occurred while processing the request.</h1>
<h2>{{.Type}}: {{.Message}}</h2>
<h3>Request</h3>
<table>
<tr><th>Method</th><td>{{.Method}}</td></tr>
<tr><th>Path</th><td>{{.Path}}</td></tr>
{{if .Query}}<tr><th>Query</th><td>{{.Query}}</td></tr>{{end}}
{{if .RequestID}}<tr><th>Request ID</th><td>{{.RequestID}}</td></tr>{{end}}
</table>
<h3>Headers</h3>
<table>
{{range .Headers}}<tr><th>{{.Name}}</th><td>{{.Value}}</td></tr>
{{end}}</table>
<h3>Stack</h3>
<pre>{{.Stack}}</pre>
</body>
</html>
`))

func writeDeveloperPage(w http.ResponseWriter, r *http.Request, f *failure) {
	page := newDeveloperPage(r, f)

	if acceptsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if err := developerPageTemplate.Execute(w, page); err != nil {
			slog.ErrorContext(r.Context(), "failed to render developer error page", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n\n", page.Type, page.Message)
	fmt.Fprintf(&b, "%s %s", page.Method, page.Path)
	if page.Query != "" {
		fmt.Fprintf(&b, "?%s", page.Query)
	}
	b.WriteString("\n")
	if page.RequestID != "" {
		fmt.Fprintf(&b, "Request ID: %s\n", page.RequestID)
	}
	b.WriteString("\nHeaders:\n")
	for _, h := range page.Headers {
		fmt.Fprintf(&b, "  %s: %s\n", h.Name, h.Value)
	}
	b.WriteString("\nStack:\n")
	b.WriteString(page.Stack)
	_, _ = io.WriteString(w, b.String())
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

var genericErrorPageTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Error</title></head>
<body>
<h1>Error.</h1>
<h2>An error occurred while processing your request.</h2>
{{if .RequestID}}<p><strong>Request ID:</strong> <code>{{.RequestID}}</code></p>{{end}}
{{if .IncidentID}}<p><strong>Incident:</strong> <code>{{.IncidentID}}</code></p>{{end}}
<hr><center>helloapi</center>
</body>
</html>
`))

// WriteErrorPage writes the generic error page. It shows reference IDs only,
// never failure detail.
func WriteErrorPage(w http.ResponseWriter, code int, requestID, incidentID string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	data := struct {
		RequestID  string
		IncidentID string
	}{RequestID: requestID, IncidentID: incidentID}
	if err := genericErrorPageTemplate.Execute(w, data); err != nil {
		slog.Error("failed to render error page", "error", err)
	}
}

// resetResponse drops headers that describe a body the failed action may
// have prepared. Headers set by earlier stages (HSTS, request ID) are kept.
func resetResponse(h http.Header) {
	for _, key := range []string{
		"Content-Type",
		"Content-Length",
		"Content-Encoding",
		"Content-Disposition",
		"Etag",
		"Last-Modified",
		"Location",
	} {
		h.Del(key)
	}
	h.Set("Cache-Control", "no-cache, no-store")
	h.Set("Pragma", "no-cache")
}
