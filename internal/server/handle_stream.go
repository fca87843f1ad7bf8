package server

import (
	"fmt"
	"net/http"
	"time"
)

const pingInterval = 30 * time.Second

// handleStream sends every signal of the viewer's experience as a
// Server-Sent Event named after the signal type.
func handleStream(broker *Broker, metrics *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		slug := viewerFrom(r).Slug
		ch := broker.Subscribe(slug)
		defer broker.Unsubscribe(slug, ch)
		defer metrics.streamOpened("sse")()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: signal\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
