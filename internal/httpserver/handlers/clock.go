package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"

	"github.com/MrSnakeDoc/newtab/internal/clock"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// clockRetry is the reconnect delay suggested to EventSource clients.
const clockRetry = 3 * time.Second

type tickEvent struct {
	Time    string `json:"time"`
	Weekday string `json:"weekday"`
	Unix    int64  `json:"unix"`
}

// Clock streams one "tick" server-sent event per second until the client
// goes away. Each event carries a ULID so reconnects are traceable.
func Clock(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		// The server write timeout would otherwise cut the stream.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil && !isUnsupported(err) {
			d.Logger.Debug("failed to clear write deadline", logger.Error(err))
		}

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-store")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if _, err := fmt.Fprintf(w, "retry: %d\n\n", clockRetry.Milliseconds()); err != nil {
			return
		}

		var buf bytes.Buffer
		d.Clock.Run(r.Context(), func(t clock.Tick) {
			buf.Reset()
			if err := writeTick(&buf, t); err != nil {
				d.Logger.Debug("failed to encode tick", logger.Error(err))
				return
			}
			if _, err := buf.WriteTo(w); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				d.Logger.Debug("failed to flush tick", logger.Error(err))
			}
		})
	}
}

func writeTick(buf *bytes.Buffer, t clock.Tick) error {
	data, err := json.Marshal(tickEvent{Time: t.Time, Weekday: t.Weekday, Unix: t.At.Unix()})
	if err != nil {
		return err
	}
	fmt.Fprintf(buf, "id: %s\nevent: tick\ndata: %s\n\n", ulid.Make(), data)
	return nil
}

func isUnsupported(err error) bool {
	return errors.Is(err, http.ErrNotSupported)
}
