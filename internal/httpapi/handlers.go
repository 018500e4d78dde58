package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/hub"
)

// ListRooms serves GET /rooms, optionally filtered with ?kind=voting|race.
func ListRooms(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := engine.Kind(r.URL.Query().Get("kind"))
		switch kind {
		case "", engine.KindVoting, engine.KindRace:
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown room kind"})
			return
		}

		rooms, err := h.ListRooms(r.Context(), kind)
		if err != nil {
			log.Warn("list rooms failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, rooms)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
