package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/reveal/internal/session"
)

// handleSocket is the bidirectional transport: inbound text frames are
// events, outbound frames are signals. A rejected event is answered with
// an ErrorResponse frame.
func handleSocket(logger *slog.Logger, broker *Broker, metrics *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		slug := viewerFrom(r).Slug

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ch := broker.Subscribe(slug)
		defer broker.Unsubscribe(slug, ch)
		defer metrics.streamOpened("ws")()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		rejected := make(chan ErrorResponse, 1)
		go func() {
			defer cancel()
			for {
				var ev session.Event
				if err := wsjson.Read(ctx, conn, &ev); err != nil {
					logger.Debug("websocket read ended", "slug", slug, "error", err)
					return
				}
				if _, _, err := dispatch(ctx, s, ev, metrics); err != nil {
					select {
					case rejected <- ErrorResponse{Error: err.Error()}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data := <-ch:
				err = conn.Write(ctx, websocket.MessageText, data)
			case e := <-rejected:
				err = wsjson.Write(ctx, conn, e)
			}
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Debug("websocket write failed", "slug", slug, "error", err)
				}
				return
			}
		}
	}
}
