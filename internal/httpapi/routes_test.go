package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/hub"
	"github.com/DoyleJ11/partyroom-backend/internal/room"
	"github.com/DoyleJ11/partyroom-backend/internal/sentences"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

func newServer(t *testing.T) (*hub.Hub, http.Handler) {
	t.Helper()
	src, err := sentences.Default()
	require.NoError(t, err)
	h := hub.NewHub(context.Background(), hub.Options{
		Config: hub.Config{
			Voting: hub.KindConfig{MaxRooms: 5, MaxParticipants: 5, EmptyGrace: time.Minute, Rules: engine.DefaultRules(engine.KindVoting)},
			Race:   hub.KindConfig{MaxRooms: 5, MaxParticipants: 5, Rules: engine.DefaultRules(engine.KindRace)},
		},
		Sentences: src,
	})
	t.Cleanup(func() { _ = h.Shutdown(context.Background()) })
	return h, SetupRoutes(h, Options{CORSOrigins: []string{"http://localhost:5173"}})
}

func discard() room.Sink { return room.SinkFunc(func(types.Push) bool { return true }) }

func TestHealthz(t *testing.T) {
	_, srv := newServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListRooms(t *testing.T) {
	h, srv := newServer(t)
	ctx := context.Background()
	_, err := h.CreateRoom(ctx, "c1", engine.KindVoting, "estimates", "ann", "", discard())
	require.NoError(t, err)
	_, err = h.CreateRoom(ctx, "c2", engine.KindRace, "speed", "bo", "", discard())
	require.NoError(t, err)

	cases := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?kind=voting", 1},
		{"?kind=race", 1},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms"+tc.query, nil))
		require.Equal(t, http.StatusOK, rec.Code, tc.query)

		var rooms []types.RoomSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rooms))
		assert.Len(t, rooms, tc.want, tc.query)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms?kind=chess", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS(t *testing.T) {
	_, srv := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/rooms", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginPatterns(t *testing.T) {
	assert.Equal(t, []string{"localhost:5173", "app.example.com"},
		originPatterns([]string{"http://localhost:5173", "https://app.example.com", "::bad"}))
	assert.Equal(t, []string{"*"}, originPatterns([]string{"http://a.test", "*"}))
}
