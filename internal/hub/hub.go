// Package hub is the session registry: it owns the set of live rooms and
// knows which room each connection is in.
//
// The hub calls into rooms synchronously while handling its own messages;
// rooms never call back into the hub.
package hub

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/identity"
	"github.com/DoyleJ11/partyroom-backend/internal/room"
	"github.com/DoyleJ11/partyroom-backend/internal/sentences"
	"github.com/DoyleJ11/partyroom-backend/internal/timers"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

var ErrRoomNotFound = errors.New("room not found")
var ErrRoomLimitReached = errors.New("room limit reached")
var ErrAlreadyInRoom = errors.New("connection already in a room")
var ErrNotInRoom = errors.New("connection not in a room")
var ErrClosed = errors.New("hub closed")

const (
	codeLength   = 6
	codeAttempts = 16

	defaultRoomCallTimeout = 2 * time.Second
)

type KindConfig struct {
	MaxRooms        int
	MaxParticipants int
	EmptyGrace      time.Duration
	Rules           engine.Rules
}

type Config struct {
	Voting          KindConfig
	Race            KindConfig
	InactiveTimeout time.Duration
	SweepInterval   time.Duration
	// RoomCallTimeout bounds how long the hub waits on any one room.
	RoomCallTimeout time.Duration
}

type Options struct {
	Config
	Clock     clockwork.Clock
	IDs       identity.Generator
	Sentences sentences.Source
	Logger    *zap.Logger
}

type Hub struct {
	inbox chan HubMsg
	rooms map[string]*room.Room
	conns map[string]string // connection id -> room id

	cfg       Config
	clock     clockwork.Clock
	expiry    *timers.Scheduler[string]
	ids       identity.Generator
	sentences sentences.Source
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.IDs == nil {
		opts.IDs = identity.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RoomCallTimeout <= 0 {
		opts.RoomCallTimeout = defaultRoomCallTimeout
	}

	h := &Hub{
		inbox:     make(chan HubMsg, 64),
		rooms:     make(map[string]*room.Room),
		conns:     make(map[string]string),
		cfg:       opts.Config,
		clock:     opts.Clock,
		ids:       opts.IDs,
		sentences: opts.Sentences,
		log:       opts.Logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	h.expiry = timers.New(opts.Clock, func(roomID string, gen uint64) {
		select {
		case h.inbox <- expiryFired{RoomID: roomID, Gen: gen}:
		case <-h.done:
		}
	})

	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)

	var sweep <-chan time.Time
	if h.cfg.SweepInterval > 0 && h.cfg.InactiveTimeout > 0 {
		ticker := h.clock.NewTicker(h.cfg.SweepInterval)
		defer ticker.Stop()
		sweep = ticker.Chan()
	}

	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case <-sweep:
			h.sweepInactive()

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				res, err := h.createRoom(msg)
				msg.Reply <- joinReply{res: res, err: err}

			case JoinRoom:
				res, err := h.joinRoom(msg)
				msg.Reply <- joinReply{res: res, err: err}

			case LeaveRoom:
				msg.Reply <- h.leaveRoom(msg)

			case ListRooms:
				msg.Reply <- h.listRooms(msg.Kind)

			case GetRoom:
				msg.Reply <- h.rooms[msg.RoomID] // may be nil

			case RoomFor:
				msg.Reply <- h.rooms[h.conns[msg.ConnID]] // may be nil

			case expiryFired:
				h.expire(msg)

			case roomVacated:
				h.vacated(msg)

			case ShutdownHub:
				h.shutdown()
				close(msg.Reply)
				return
			}
		}
	}
}

func (h *Hub) kindConfig(kind engine.Kind) (KindConfig, bool) {
	switch kind {
	case engine.KindVoting:
		return h.cfg.Voting, true
	case engine.KindRace:
		return h.cfg.Race, true
	}
	return KindConfig{}, false
}

func (h *Hub) createRoom(msg CreateRoom) (types.JoinResult, error) {
	if _, ok := h.conns[msg.ConnID]; ok {
		return types.JoinResult{}, ErrAlreadyInRoom
	}
	cfg, ok := h.kindConfig(msg.Kind)
	if !ok {
		return types.JoinResult{}, fmt.Errorf("create room: unknown kind %q", msg.Kind)
	}
	roomName, err := identity.ValidateRoomName(msg.RoomName)
	if err != nil {
		return types.JoinResult{}, err
	}
	userName, err := identity.ValidateDisplayName(msg.UserName)
	if err != nil {
		return types.JoinResult{}, err
	}
	if cfg.MaxRooms > 0 && h.countRooms(msg.Kind) >= cfg.MaxRooms {
		return types.JoinResult{}, ErrRoomLimitReached
	}

	code, err := h.newCode(msg.Kind)
	if err != nil {
		return types.JoinResult{}, err
	}
	rm := room.New(h.ctx, room.Options{
		ID:              code,
		Kind:            msg.Kind,
		Name:            roomName,
		MaxParticipants: cfg.MaxParticipants,
		Rules:           cfg.Rules,
		Clock:           h.clock,
		IDs:             h.ids,
		Sentences:       h.sentences,
		Logger:          h.log,
	})
	ctx, cancel := h.roomCtx()
	defer cancel()
	res, err := rm.Join(ctx, msg.ConnID, userName, msg.RequestID, msg.Sink)
	if err != nil {
		_ = rm.Close(ctx, types.CloseShutdown)
		return types.JoinResult{}, err
	}
	h.rooms[code] = rm
	h.conns[msg.ConnID] = code
	h.log.Info("room created", zap.String("room_id", code), zap.String("kind", string(msg.Kind)))
	return res, nil
}

func (h *Hub) newCode(kind engine.Kind) (string, error) {
	prefix := ""
	if kind == engine.KindRace {
		prefix = "T"
	}
	for i := 0; i < codeAttempts; i++ {
		code, err := h.ids.RoomCode(prefix, codeLength)
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		if _, taken := h.rooms[code]; !taken {
			return code, nil
		}
		h.log.Debug("room code collision, regenerating", zap.String("code", code))
	}
	return "", errors.New("generate room code: too many collisions")
}

func (h *Hub) joinRoom(msg JoinRoom) (types.JoinResult, error) {
	if _, ok := h.conns[msg.ConnID]; ok {
		return types.JoinResult{}, ErrAlreadyInRoom
	}
	rm, ok := h.rooms[msg.RoomID]
	if !ok || (msg.Kind != "" && rm.Kind() != msg.Kind) {
		return types.JoinResult{}, ErrRoomNotFound
	}
	ctx, cancel := h.roomCtx()
	defer cancel()
	res, err := rm.Join(ctx, msg.ConnID, msg.UserName, msg.RequestID, msg.Sink)
	if errors.Is(err, room.ErrClosed) {
		return types.JoinResult{}, ErrRoomNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		// the join may still land once the room catches up
		go h.settle(rm, msg.ConnID)
	}
	if err != nil {
		return types.JoinResult{}, err
	}
	h.expiry.Cancel(msg.RoomID)
	h.conns[msg.ConnID] = msg.RoomID
	return res, nil
}

func (h *Hub) leaveRoom(msg LeaveRoom) error {
	roomID, ok := h.conns[msg.ConnID]
	if !ok {
		return nil
	}
	delete(h.conns, msg.ConnID)

	rm, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	ctx, cancel := h.roomCtx()
	defer cancel()
	remaining, err := rm.Leave(ctx, msg.ConnID, msg.RequestID)
	if errors.Is(err, context.DeadlineExceeded) {
		go h.settle(rm, msg.ConnID)
		return nil
	}
	if err != nil && !errors.Is(err, engine.ErrNotMember) {
		h.log.Warn("leave failed", zap.String("room_id", roomID), zap.Error(err))
		return nil
	}
	if remaining == 0 {
		h.roomEmptied(rm)
	}
	return nil
}

// roomEmptied destroys an empty room once its kind's grace period passes.
func (h *Hub) roomEmptied(rm *room.Room) {
	cfg, _ := h.kindConfig(rm.Kind())
	if cfg.EmptyGrace <= 0 {
		h.destroy(rm.ID(), types.CloseExpired)
		return
	}
	h.expiry.Schedule(rm.ID(), cfg.EmptyGrace)
	h.log.Debug("empty room scheduled for removal", zap.String("room_id", rm.ID()), zap.Duration("grace", cfg.EmptyGrace))
}

func (h *Hub) expire(msg expiryFired) {
	if !h.expiry.Claim(msg.RoomID, msg.Gen) {
		return
	}
	rm, ok := h.rooms[msg.RoomID]
	if !ok {
		return
	}
	ctx, cancel := h.roomCtx()
	defer cancel()
	sum, err := rm.Summary(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.roomEmptied(rm)
	case err == nil && sum.ParticipantCount > 0:
	default:
		h.destroy(msg.RoomID, types.CloseExpired)
	}
}

// settle makes sure connID is out of rm without holding up the hub loop, and
// reports the room back once it is empty.
func (h *Hub) settle(rm *room.Room, connID string) {
	remaining, err := rm.Leave(h.ctx, connID, "")
	if err != nil && !errors.Is(err, engine.ErrNotMember) {
		return
	}
	if remaining > 0 {
		return
	}
	select {
	case h.inbox <- roomVacated{RoomID: rm.ID()}:
	case <-h.done:
	}
}

func (h *Hub) vacated(msg roomVacated) {
	rm, ok := h.rooms[msg.RoomID]
	if !ok {
		return
	}
	ctx, cancel := h.roomCtx()
	defer cancel()
	if sum, err := rm.Summary(ctx); err == nil && sum.ParticipantCount == 0 {
		h.roomEmptied(rm)
	}
}

func (h *Hub) sweepInactive() {
	now := h.clock.Now()
	for id, rm := range h.rooms {
		ctx, cancel := h.roomCtx()
		sum, err := rm.Summary(ctx)
		cancel()
		if errors.Is(err, room.ErrClosed) {
			h.destroy(id, types.CloseInactive)
			continue
		}
		if err != nil {
			h.log.Warn("room did not answer sweep", zap.String("room_id", id), zap.Error(err))
			continue
		}
		if now.Sub(sum.LastActivityAt) > h.cfg.InactiveTimeout {
			h.destroy(id, types.CloseInactive)
		}
	}
}

func (h *Hub) destroy(roomID, reason string) {
	rm, ok := h.rooms[roomID]
	if !ok {
		return
	}
	h.expiry.Cancel(roomID)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), h.cfg.RoomCallTimeout)
	defer cancel()
	if err := rm.Close(ctx, reason); err != nil {
		h.log.Warn("room close failed", zap.String("room_id", roomID), zap.Error(err))
	}
	delete(h.rooms, roomID)
	for conn, id := range h.conns {
		if id == roomID {
			delete(h.conns, conn)
		}
	}
	h.log.Info("room removed", zap.String("room_id", roomID), zap.String("reason", reason))
}

func (h *Hub) roomCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(h.ctx, h.cfg.RoomCallTimeout)
}

func (h *Hub) countRooms(kind engine.Kind) int {
	n := 0
	for _, rm := range h.rooms {
		if rm.Kind() == kind {
			n++
		}
	}
	return n
}

// listRooms returns the rooms of kind, newest first. Empty rooms still in
// their grace period are listed.
func (h *Hub) listRooms(kind engine.Kind) []types.RoomSummary {
	out := []types.RoomSummary{}
	for _, rm := range h.rooms {
		if kind != "" && rm.Kind() != kind {
			continue
		}
		ctx, cancel := h.roomCtx()
		sum, err := rm.Summary(ctx)
		cancel()
		if err != nil {
			continue
		}
		out = append(out, sum)
	}
	slices.SortFunc(out, func(a, b types.RoomSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (h *Hub) shutdown() {
	h.expiry.CancelAll()
	for id := range h.rooms {
		h.destroy(id, types.CloseShutdown)
	}
	clear(h.conns)
	h.cancel()
}
