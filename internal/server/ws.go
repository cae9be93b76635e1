package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/arena"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/feed"
)

// handleSpectateWS streams the same messages as the SSE endpoint over a
// websocket and closes it normally once the match is over. Messages sent
// by the client are ignored.
func handleSpectateWS(logger *slog.Logger, reg *arena.Registry, broker *feed.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stream, err := openStream(r, reg, broker, chi.URLParam(r, "matchID"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		defer stream.Close()

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx := conn.CloseRead(r.Context())

		send := func(data []byte) bool {
			wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := conn.Write(wctx, websocket.MessageText, data); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return false
			}
			return true
		}

		if stream.run(ctx, send, nil) {
			conn.Close(websocket.StatusNormalClosure, "match over")
		}
	}
}
