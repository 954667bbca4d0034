package rest

import (
	"context"
	"log/slog"
	"net/http"
)

type storagePinger interface {
	Ping(ctx context.Context) error
}

type PingHandler interface {
	PingHandler(w http.ResponseWriter, r *http.Request)
}

type pingHandler struct {
	logger  *slog.Logger
	storage storagePinger
}

func NewPingHandler(logger *slog.Logger, storage storagePinger) PingHandler {
	return &pingHandler{
		logger:  logger.With("component", "ping"),
		storage: storage,
	}
}

// PingHandler answers "pong" while the player index is reachable.
func (that *pingHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := that.storage.Ping(r.Context()); err != nil {
		that.logger.Error("player index is unreachable", "error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
