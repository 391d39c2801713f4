package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
)

const heartbeatInterval = time.Second

// StreamProgress serves session progress as Server-Sent Events. Each frame
// carries a message plus the full status snapshot. Heartbeat frames are sent
// while idle so proxies keep the connection open. After a terminal event the
// stream is closed.
func (h *DownloadHandler) StreamProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, goerr.New("streaming not supported"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, unsubscribe := h.downloadUC.Subscribe()
	defer unsubscribe()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, event); err != nil {
				logger.Debug("Progress subscriber gone", "error", err)
				return
			}
			if event.Done {
				return
			}

		case <-heartbeat.C:
			status := h.downloadUC.Status()
			event := model.ProgressEvent{Status: status}
			if status.Complete {
				// Subscriber joined after the terminal event was published.
				event.Message = "DONE"
				event.Done = true
			}
			if err := writeEvent(w, flusher, event); err != nil {
				logger.Debug("Progress subscriber gone", "error", err)
				return
			}
			if event.Done {
				return
			}
		}
	}
}

// writeEvent encodes one SSE data frame and flushes it.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event model.ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return goerr.Wrap(err, "failed to encode progress event")
	}
	if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
