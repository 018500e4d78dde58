// Package room runs one goroutine per room. Every mutation of a room's state
// happens on that goroutine, so commands, joins, leaves and timer fires for a
// room are applied strictly one at a time.
package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/identity"
	"github.com/DoyleJ11/partyroom-backend/internal/sentences"
	"github.com/DoyleJ11/partyroom-backend/internal/timers"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

var ErrClosed = errors.New("room closed")
var ErrAlreadyJoined = errors.New("connection already joined this room")

// Sink receives pushes for one member connection. Deliver must not block;
// returning false marks the consumer as too slow and it is dropped.
type Sink interface {
	Deliver(p types.Push) bool
}

type SinkFunc func(p types.Push) bool

func (f SinkFunc) Deliver(p types.Push) bool { return f(p) }

type Options struct {
	ID              string
	Kind            engine.Kind
	Name            string
	MaxParticipants int
	Rules           engine.Rules
	Clock           clockwork.Clock
	IDs             identity.Generator
	Sentences       sentences.Source
	Logger          *zap.Logger
}

type Room struct {
	id   string
	kind engine.Kind

	inbox   chan Msg
	state   *engine.State
	version int
	conns   map[string]string // connection id -> participant id
	sinks   map[string]Sink   // participant id -> sink

	clock     clockwork.Clock
	timers    *timers.Scheduler[engine.TimerKind]
	ids       identity.Generator
	sentences sentences.Source
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(parent context.Context, opts Options) *Room {
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

	r := &Room{
		id:        opts.ID,
		kind:      opts.Kind,
		inbox:     make(chan Msg, 64),
		state:     engine.NewState(opts.Kind, opts.ID, opts.Name, opts.MaxParticipants, opts.Rules, opts.Clock.Now()),
		conns:     make(map[string]string),
		sinks:     make(map[string]Sink),
		clock:     opts.Clock,
		ids:       opts.IDs,
		sentences: opts.Sentences,
		log:       opts.Logger.With(zap.String("room_id", opts.ID), zap.String("kind", string(opts.Kind))),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.timers = timers.New(opts.Clock, r.enqueueFire)

	go r.loop()
	return r
}

func (r *Room) ID() string { return r.id }

func (r *Room) Kind() engine.Kind { return r.kind }

// Done is closed once the actor goroutine has exited.
func (r *Room) Done() <-chan struct{} { return r.done }

// Expose the inbox so tests can inject messages such as stale timer fires.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) enqueueFire(t engine.TimerKind, gen uint64) {
	select {
	case r.inbox <- TimerFired{Timer: t, Gen: gen}:
	case <-r.done:
	}
}

func (r *Room) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown(types.CloseShutdown)
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				res, err := r.handleJoin(msg)
				msg.Reply <- joinReply{res: res, err: err}

			case Leave:
				n, err := r.handleLeave(msg)
				msg.Reply <- leaveReply{remaining: n, err: err}

			case Request:
				data, err := r.handleRequest(msg)
				msg.Reply <- requestReply{data: data, err: err}

			case TimerFired:
				r.handleTimer(msg)

			case GetInfo:
				msg.Reply <- roomView(r.state, r.conns[msg.ConnID])

			case GetSummary:
				msg.Reply <- summary(r.state)

			case GetState:
				msg.Reply <- View{
					Version:       r.version,
					NumSinks:      len(r.sinks),
					PendingTimers: r.timers.Pending(),
					Room:          roomView(r.state, ""),
				}

			case Close:
				r.shutdown(msg.Reason)
				close(msg.Reply)
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) (types.JoinResult, error) {
	if _, ok := r.conns[msg.ConnID]; ok {
		return types.JoinResult{}, ErrAlreadyJoined
	}
	name, err := identity.ValidateDisplayName(msg.Name)
	if err != nil {
		return types.JoinResult{}, err
	}

	p := engine.NewParticipant(r.ids.ParticipantID(), msg.ConnID, name, r.clock.Now())
	events, err := engine.AddParticipant(r.state, p)
	if err != nil {
		return types.JoinResult{}, err
	}
	r.conns[msg.ConnID] = p.ID
	if msg.Sink != nil {
		r.sinks[p.ID] = msg.Sink
	}
	r.version++
	r.log.Debug("participant joined", zap.String("participant_id", p.ID), zap.Bool("spectator", p.Spectator))

	r.publish(events, p.ID, msg.RequestID)
	return types.JoinResult{
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		Spectator:     p.Spectator,
		Room:          roomView(r.state, p.ID),
	}, nil
}

func (r *Room) handleLeave(msg Leave) (int, error) {
	pid, ok := r.conns[msg.ConnID]
	if !ok {
		return len(r.state.Participants), engine.ErrNotMember
	}
	left, events, err := engine.RemoveParticipant(r.state, pid, r.clock.Now())
	if err != nil {
		return len(r.state.Participants), err
	}
	delete(r.conns, msg.ConnID)
	delete(r.sinks, pid)
	r.version++
	r.log.Debug("participant left", zap.String("participant_id", pid))

	gone := participantView(r.state, left, "")
	r.broadcast(types.PushRoomUpdate, pid, msg.RequestID, func(viewer string) any {
		return types.RoomUpdate{Reason: types.UpdateLeft, Participant: &gone, Room: roomView(r.state, viewer)}
	})
	r.runTimers(events)
	r.publish(events, pid, msg.RequestID)
	r.afterEvents(events)
	return len(r.state.Participants), nil
}

func (r *Room) handleRequest(msg Request) (any, error) {
	pid, ok := r.conns[msg.ConnID]
	if !ok {
		return nil, engine.ErrNotMember
	}
	cmd := msg.Cmd
	cmd.ParticipantID = pid
	cmd.At = r.clock.Now()

	if cmd.Type == engine.CmdStartRace && r.state.Phase == engine.PhaseWaiting {
		s, err := r.pickSentence()
		if err != nil {
			return nil, err
		}
		cmd.Sentence = &s
	}

	events, err := engine.Apply(r.state, cmd)
	if err != nil {
		return nil, err
	}
	r.commit(events, pid, msg.RequestID)
	return r.ackData(cmd, events), nil
}

func (r *Room) handleTimer(msg TimerFired) {
	if !r.timers.Claim(msg.Timer, msg.Gen) {
		r.log.Debug("stale timer dropped", zap.String("timer", string(msg.Timer)), zap.Uint64("gen", msg.Gen))
		return
	}
	events, err := engine.Apply(r.state, engine.Command{Type: engine.CmdTimerFired, Timer: msg.Timer, At: r.clock.Now()})
	if err != nil {
		r.log.Warn("timer rejected", zap.String("timer", string(msg.Timer)), zap.Error(err))
		return
	}
	r.commit(events, "", "")
}

// commit records an applied command. Timers are armed before pushes go out
// so a client reacting to a countdown push always finds the next tick pending.
func (r *Room) commit(events []engine.Event, origin, requestID string) {
	if len(events) == 0 {
		return
	}
	r.version++
	r.runTimers(events)
	r.publish(events, origin, requestID)
	r.afterEvents(events)
}

func (r *Room) runTimers(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtTimerStarted:
			r.timers.Schedule(ev.Timer, ev.Delay)
		case engine.EvtTimerCancelled:
			r.timers.Cancel(ev.Timer)
		}
	}
}

// afterEvents chains the next race round once the between-rounds delay ran out.
func (r *Room) afterEvents(events []engine.Event) {
	if !engine.ContainsEvent(events, engine.EvtNextRoundReady) {
		return
	}
	if len(r.state.Participants) == 0 {
		return
	}
	s, err := r.pickSentence()
	if err != nil {
		r.log.Error("next round not started", zap.Error(err))
		return
	}
	next, err := engine.Apply(r.state, engine.Command{Type: engine.CmdBeginNextRound, Sentence: &s, At: r.clock.Now()})
	if err != nil {
		r.log.Debug("next round not started", zap.Error(err))
		return
	}
	r.commit(next, "", "")
}

func (r *Room) pickSentence() (engine.Sentence, error) {
	if r.sentences == nil {
		return engine.Sentence{}, fmt.Errorf("pick sentence: %w", sentences.ErrEmpty)
	}
	s, err := r.sentences.Pick(r.state.Race.LastSentenceID)
	if err != nil {
		return engine.Sentence{}, fmt.Errorf("pick sentence: %w", err)
	}
	return s, nil
}

func (r *Room) ackData(cmd engine.Command, events []engine.Event) any {
	switch cmd.Type {
	case engine.CmdRenameParticipant:
		if p, ok := r.state.Participants[cmd.ParticipantID]; ok {
			return participantView(r.state, p, p.ID)
		}
	case engine.CmdRenameRoom:
		return summary(r.state)
	case engine.CmdCastVote:
		p, ok := r.state.Participants[cmd.ParticipantID]
		if !ok {
			return nil
		}
		ack := types.VoteAck{Participant: participantView(r.state, p, p.ID)}
		if ev, ok := engine.FindEvent(events, engine.EvtVotesRevealed); ok {
			ack.Result = ev.VoteResult
		}
		return ack
	case engine.CmdSubmitInput:
		if ev, ok := engine.FindEvent(events, engine.EvtProgress); ok {
			return types.RaceProgress{ParticipantID: ev.ParticipantID, Progress: ev.Progress, Mismatches: ev.Mismatches}
		}
	case engine.CmdSubmitFinish:
		if ev, ok := engine.FindEvent(events, engine.EvtParticipantFinished); ok {
			return r.playerFinish(ev)
		}
	}
	return nil
}

func (r *Room) shutdown(reason string) {
	r.timers.CancelAll()
	push := types.Push{Type: types.PushRoomClosed, RoomID: r.id, Version: r.version, Data: types.RoomClosed{Reason: reason}}
	for _, sink := range r.sinks {
		sink.Deliver(push)
	}
	clear(r.sinks)
	clear(r.conns)
	r.cancel()
	r.log.Info("room closed", zap.String("reason", reason))
}
