package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sagarc03/helloapi"
)

// formatter writes incidents for the incidents commands.
type formatter interface {
	FormatList(w io.Writer, result helloapi.ListResult) error
	FormatShow(w io.Writer, incident helloapi.Incident) error
}

func newFormatter(jsonOutput bool) formatter {
	if jsonOutput {
		return jsonFormatter{}
	}
	return humanFormatter{}
}

type humanFormatter struct{}

const maxPathColumn = 40

func (humanFormatter) FormatList(w io.Writer, result helloapi.ListResult) error {
	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No incidents found")
		return nil
	}

	pathLen := 4 // "PATH"
	for i := range result.Items {
		pathLen = max(pathLen, len(result.Items[i].Path))
	}
	pathLen = min(pathLen, maxPathColumn)

	_, _ = fmt.Fprintf(w, "%-36s  %-19s  %-7s  %-*s  %s\n", "ID", "OCCURRED", "METHOD", pathLen, "PATH", "MESSAGE")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		strings.Repeat("-", 36), strings.Repeat("-", 19), strings.Repeat("-", 7), strings.Repeat("-", pathLen), strings.Repeat("-", 7))

	for i := range result.Items {
		item := &result.Items[i]
		_, _ = fmt.Fprintf(w, "%-36s  %-19s  %-7s  %-*s  %s\n",
			item.ID,
			item.OccurredAt.Format(time.DateTime),
			item.Method,
			pathLen,
			truncate(item.Path, pathLen),
			firstLine(item.Message),
		)
	}

	_, _ = fmt.Fprintf(w, "\n%d incident(s)\n", len(result.Items))

	if result.NextCursor != "" {
		_, _ = fmt.Fprintf(w, "Next page: use --cursor %q\n", result.NextCursor)
	}

	return nil
}

func (humanFormatter) FormatShow(w io.Writer, incident helloapi.Incident) error {
	_, _ = fmt.Fprintf(w, "ID:          %s\n", incident.ID)
	_, _ = fmt.Fprintf(w, "Occurred:    %s\n", incident.OccurredAt.Format(time.RFC3339Nano))
	_, _ = fmt.Fprintf(w, "Environment: %s\n", incident.Environment)
	_, _ = fmt.Fprintf(w, "Request ID:  %s\n", incident.RequestID)
	_, _ = fmt.Fprintf(w, "Request:     %s %s\n", incident.Method, incident.Path)
	_, _ = fmt.Fprintf(w, "\n%s\n", incident.Message)
	return nil
}

type jsonFormatter struct{}

func (jsonFormatter) FormatList(w io.Writer, result helloapi.ListResult) error {
	if result.Items == nil {
		result.Items = []helloapi.Incident{}
	}
	return writeJSON(w, result)
}

func (jsonFormatter) FormatShow(w io.Writer, incident helloapi.Incident) error {
	return writeJSON(w, incident)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return helloapi.TruncateUTF8(s, n-3) + "..."
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
