package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the game routes. metrics may be nil.
func NewRouter(h *Handler, ws *WSHandler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", h.Index)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/movie_search", h.SearchMovies)
	r.Get("/start_game", h.StartGame)
	r.Post("/start_game", h.StartGame)
	r.Post("/submit_game", h.SubmitGame)
	r.Get("/score", h.Scores)
	if ws != nil {
		r.Get("/ws", ws.ServeWS)
	}
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
