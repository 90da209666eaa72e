// Package health exposes a readiness probe backed by a store ping.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gabpenaforte/lista-alunos-api/internal/utils/response"
)

// MsgUnavailable is the envelope message when the store cannot be reached.
const MsgUnavailable = "Store indisponível"

// Pinger is the slice of storage.Storage the probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles GET /healthz: 200 when the store answers within two
// seconds, 503 otherwise.
func Handler(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.Error(MsgUnavailable, err))
			return
		}

		response.WriteJSON(w, http.StatusOK,
			response.Success(map[string]string{"store": "ok"}))
	}
}
