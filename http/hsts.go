package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultHSTSMaxAge is the max-age used when HSTSConfig.MaxAge is zero.
const DefaultHSTSMaxAge = 30 * 24 * time.Hour

type HSTSConfig struct {
	MaxAge            time.Duration
	IncludeSubDomains bool
	Preload           bool
	// ExcludedHosts never receive the header. Matching ignores case and port.
	ExcludedHosts []string
}

// HeaderValue returns the Strict-Transport-Security value for cfg.
func (cfg HSTSConfig) HeaderValue() string {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultHSTSMaxAge
	}

	var b strings.Builder
	b.WriteString("max-age=")
	b.WriteString(strconv.FormatInt(int64(maxAge/time.Second), 10))
	if cfg.IncludeSubDomains {
		b.WriteString("; includeSubDomains")
	}
	if cfg.Preload {
		b.WriteString("; preload")
	}
	return b.String()
}

// HSTSMiddleware sets Strict-Transport-Security on every response before the
// rest of the pipeline runs, so error responses produced further in carry it
// as well.
func HSTSMiddleware(cfg HSTSConfig) func(http.Handler) http.Handler {
	value := cfg.HeaderValue()

	excluded := make(map[string]struct{}, len(cfg.ExcludedHosts))
	for _, host := range cfg.ExcludedHosts {
		excluded[strings.ToLower(strings.TrimSpace(host))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := excluded[hostname(r.Host)]; !skip {
				w.Header().Set("Strict-Transport-Security", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hostname(hostport string) string {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	return strings.ToLower(strings.Trim(host, "[]"))
}
