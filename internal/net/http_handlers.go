package net

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"marble-soccer/server/internal/net/ws"
	"marble-soccer/server/internal/rooms"
	"marble-soccer/server/internal/telemetry"
)

type HTTPHandlerConfig struct {
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// NewHTTPHandler assembles the server's HTTP surface: the websocket entry
// point plus the health and diagnostics endpoints.
func NewHTTPHandler(manager *rooms.Manager, counters *telemetry.Counters, cfg HTTPHandlerConfig) nethttp.Handler {
	mux := nethttp.NewServeMux()

	mux.Handle("/ws", ws.NewHandler(manager, cfg.AllowedOrigins, cfg.Logger))

	mux.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			Rooms      any    `json:"rooms"`
			Telemetry  any    `json:"telemetry"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Rooms:      manager.List(),
			Telemetry:  counters.Snapshot(),
		}

		data, err := json.Marshal(payload)
		if err != nil {
			nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	return mux
}
