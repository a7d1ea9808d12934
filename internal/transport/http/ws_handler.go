package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"celebrity-trivia/internal/app"
	"celebrity-trivia/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler plays one round per websocket connection: it sends the options,
// waits for a single submission and replies with the scorecard.
type WSHandler struct {
	games    *app.GameService
	images   *app.ImageCacher
	upgrader websocket.Upgrader
}

func NewWSHandler(games *app.GameService, images *app.ImageCacher) *WSHandler {
	return &WSHandler{
		games:  games,
		images: images,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	Selected []int `json:"selected"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and runs a round for ?movie_id=.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	movieID := r.URL.Query().Get("movie_id")
	if movieID == "" {
		http.Error(w, "missing movie_id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	started, err := h.games.StartRound(ctx, movieID)
	if err != nil {
		slog.Error("ws start round", "movie_id", movieID, "error", err)
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "could not start round"}})
		return
	}
	if !started.OK {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "notice", Payload: errorPayload{Message: started.Notice}})
		return
	}
	round := started.Payload
	if h.images != nil {
		round.Options = h.images.Cache(ctx, round.Options)
	}
	if err := conn.WriteJSON(outboundMessage[domain.Round]{Type: "round", Payload: round}); err != nil {
		slog.Warn("ws write error", "error", err)
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		if inbound.Type != "submit" {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
			continue
		}
		var payload submitPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}})
			continue
		}

		scored, err := h.games.SubmitRound(ctx, domain.Submission{
			RoundID:   round.ID,
			MovieID:   round.Movie.ID,
			OptionIDs: round.OptionIDs(),
			Selected:  payload.Selected,
		})
		if err != nil {
			slog.Error("ws submit round", "round_id", round.ID, "error", err)
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "could not score round"}})
			return
		}
		if !scored.OK {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "notice", Payload: errorPayload{Message: scored.Notice}})
			return
		}
		_ = conn.WriteJSON(outboundMessage[domain.Scorecard]{Type: "result", Payload: scored.Payload})
		return
	}
}
