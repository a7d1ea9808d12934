package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"celebrity-trivia/internal/app"
	"celebrity-trivia/internal/domain"
	"celebrity-trivia/internal/tmdb"
)

// Handler exposes the game over plain HTTP with JSON bodies.
type Handler struct {
	games  *app.GameService
	images *app.ImageCacher
}

// NewHandler wires the routes; images may be nil to skip profile downloads.
func NewHandler(games *app.GameService, images *app.ImageCacher) *Handler {
	return &Handler{games: games, images: images}
}

type errorPayload struct {
	Message string `json:"message"`
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"service": "celebrity-trivia", "status": "ok"})
}

// SearchMovies accepts ?q=... or a bare query string.
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" && !strings.Contains(r.URL.RawQuery, "=") {
		query, _ = url.QueryUnescape(r.URL.RawQuery)
	}
	hits, err := h.games.SearchMovies(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits})
}

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	res, err := h.games.StartRound(r.Context(), r.FormValue("movie_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if res.OK && h.images != nil {
		res.Payload.Options = h.images.Cache(r.Context(), res.Payload.Options)
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) SubmitGame(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid form"})
		return
	}
	sub, err := ParseSubmission(r.PostForm)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
		return
	}
	res, err := h.games.SubmitRound(r.Context(), sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Scores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.games.ListScores(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	if tmdb.IsUpstream(err) {
		status = http.StatusBadGateway
		msg = "movie catalog unavailable, try again later"
	} else if errors.Is(err, domain.ErrMovieNotFound) {
		status = http.StatusNotFound
		msg = err.Error()
	}
	slog.Error("request failed", "status", status, "error", err)
	writeJSON(w, status, errorPayload{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}
