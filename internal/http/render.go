package httpx

import (
	"bytes"
	"log/slog"
	"net/http"

	g "maragu.dev/gomponents"
)

// renderNode buffers n and writes it as HTML. A render failure yields a 500 and
// nothing partial reaches the client.
func renderNode(w http.ResponseWriter, r *http.Request, status int, n g.Node) {
	var buf bytes.Buffer
	if n != nil {
		if err := n.Render(&buf); err != nil {
			slog.ErrorContext(r.Context(), "render failed", slog.String("path", r.URL.Path), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.DebugContext(r.Context(), "write rendered html", slog.Any("error", err))
	}
}
