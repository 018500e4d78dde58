package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 10, cfg.Voting.MaxRooms)
	assert.Equal(t, 20, cfg.Voting.MaxParticipants)
	assert.Equal(t, 3*time.Minute, cfg.Voting.EmptyGrace)
	assert.Equal(t, 3, cfg.Voting.Rules.RevealCountdownSec)
	assert.Equal(t, time.Duration(0), cfg.Race.EmptyGrace)
	assert.Equal(t, 5, cfg.Race.Rules.FinishGraceSec)
	assert.Equal(t, 10, cfg.Race.Rules.PasteThreshold)
	assert.Equal(t, 60*time.Minute, cfg.InactiveTimeout)
	assert.Equal(t, 2*time.Second, cfg.RoomCallTimeout)
	assert.Equal(t, 64, cfg.WS.OutboxSize)
	assert.True(t, cfg.Development())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("VOTING_EMPTY_GRACE", "90")
	t.Setenv("RACE_NEXT_ROUND_DELAY", "7")
	t.Setenv("WS_WRITE_TIMEOUT", "250ms")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 90*time.Second, cfg.Voting.EmptyGrace)
	assert.Equal(t, 7, cfg.Race.Rules.NextRoundDelaySec)
	assert.Equal(t, 250*time.Millisecond, cfg.WS.WriteTimeout)
	assert.False(t, cfg.Development())
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RACE_MAX_ROOMS=3\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RACE_MAX_ROOMS") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Race.MaxRooms)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("VOTING_MAX_ROOMS", "many")
	t.Setenv("ROOM_SWEEP_INTERVAL", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VOTING_MAX_ROOMS")
	assert.Contains(t, err.Error(), "ROOM_SWEEP_INTERVAL")
}
