package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
)

type Config struct {
	Addr        string
	AppEnv      string
	LogLevel    string
	CORSOrigins []string

	Voting Rooms
	Race   Rooms

	InactiveTimeout time.Duration
	SweepInterval   time.Duration
	RoomCallTimeout time.Duration

	WS WS
}

// Rooms holds the limits and timings for one room kind.
type Rooms struct {
	MaxRooms        int
	MaxParticipants int
	EmptyGrace      time.Duration
	Rules           engine.Rules
}

type WS struct {
	OutboxSize   int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

func (c Config) Development() bool { return c.AppEnv != "production" }

// Load reads the given .env files (".env" when none are named; missing files
// are fine) and then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	r := &reader{}
	cfg := Config{
		Addr:        r.str("ADDR", ":8080"),
		AppEnv:      r.str("APP_ENV", "development"),
		LogLevel:    r.str("LOG_LEVEL", "info"),
		CORSOrigins: r.list("CORS_ORIGINS", []string{"http://localhost:5173"}),
		Voting: Rooms{
			MaxRooms:        r.int("VOTING_MAX_ROOMS", 10),
			MaxParticipants: r.int("VOTING_MAX_PARTICIPANTS", 20),
			EmptyGrace:      r.duration("VOTING_EMPTY_GRACE", 3*time.Minute),
			Rules: engine.Rules{
				RevealCountdownSec: r.int("VOTING_REVEAL_COUNTDOWN", 3),
			},
		},
		Race: Rooms{
			MaxRooms:        r.int("RACE_MAX_ROOMS", 10),
			MaxParticipants: r.int("RACE_MAX_PARTICIPANTS", 10),
			EmptyGrace:      r.duration("RACE_EMPTY_GRACE", 0),
			Rules: engine.Rules{
				StartCountdownSec: r.int("RACE_START_COUNTDOWN", 3),
				FinishGraceSec:    r.int("RACE_FINISH_GRACE", 5),
				NextRoundDelaySec: r.int("RACE_NEXT_ROUND_DELAY", 3),
				PasteThreshold:    r.int("RACE_PASTE_THRESHOLD", 10),
				MinRacers:         r.int("RACE_MIN_RACERS", 1),
			},
		},
		InactiveTimeout: r.duration("ROOM_INACTIVE_TIMEOUT", 60*time.Minute),
		SweepInterval:   r.duration("ROOM_SWEEP_INTERVAL", 5*time.Minute),
		RoomCallTimeout: r.duration("ROOM_CALL_TIMEOUT", 2*time.Second),
		WS: WS{
			OutboxSize:   r.int("WS_OUTBOX_SIZE", 64),
			WriteTimeout: r.duration("WS_WRITE_TIMEOUT", 5*time.Second),
			PingInterval: r.duration("WS_PING_INTERVAL", 30*time.Second),
		},
	}
	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// reader collects every malformed variable instead of stopping at the first.
type reader struct {
	errs []error
}

func (r *reader) str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (r *reader) list(key string, fallback []string) []string {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *reader) int(key string, fallback int) int {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		r.errs = append(r.errs, fmt.Errorf("%s: want a non-negative integer, got %q", key, v))
		return fallback
	}
	return n
}

// duration accepts Go durations ("90s", "3m") or bare seconds.
func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		r.errs = append(r.errs, fmt.Errorf("%s: want a duration, got %q", key, v))
		return fallback
	}
	return d
}
