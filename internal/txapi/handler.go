package txapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"txpipeline/internal/pages"
)

// NewHandler serves a fixed envelope at GET /transactions.
func NewHandler(env pages.Envelope) (http.Handler, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /transactions", func(w http.ResponseWriter, r *http.Request) {
		slog.DebugContext(r.Context(), "serving transactions", "pages", len(env.Pages), "bytes", len(body))
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write(body)
		if err != nil {
			slog.WarnContext(r.Context(), "failed to write transactions", "err", err)
		}
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	return mux, nil
}
