package engine

import (
	"errors"
	"time"
)

var ErrNotMember = errors.New("participant not in room")
var ErrDuplicateParticipant = errors.New("participant already in room")
var ErrRoomFull = errors.New("room is full")
var ErrWrongPhase = errors.New("action not allowed in current phase")
var ErrInvalidVote = errors.New("invalid vote value")
var ErrNoVotes = errors.New("no votes cast")
var ErrCountdownActive = errors.New("countdown already active")
var ErrNotOwner = errors.New("only the room owner can start the game")
var ErrNotEnoughRacers = errors.New("not enough racers")
var ErrSpectator = errors.New("spectators cannot race this round")
var ErrAlreadyFinished = errors.New("already finished")
var ErrPasteDetected = errors.New("paste detected")
var ErrHasMismatches = errors.New("input does not match sentence")
var ErrNoSentence = errors.New("no sentence selected")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Kind string

const (
	KindVoting Kind = "voting"
	KindRace   Kind = "race"
)

type Phase string

const (
	PhaseSelecting Phase = "selecting"
	PhaseRevealed  Phase = "revealed"

	PhaseWaiting   Phase = "waiting"
	PhaseCountdown Phase = "countdown"
	PhaseRacing    Phase = "racing"
	PhaseRoundEnd  Phase = "round_end"
)

// TimerKind names the countdown a timer drives. The string values go over the wire.
type TimerKind string

const (
	TimerReveal    TimerKind = "reveal"
	TimerStart     TimerKind = "game_start"
	TimerFinish    TimerKind = "finish"
	TimerNextRound TimerKind = "next_round"
)

// Countdowns tick once a second.
const TickInterval = time.Second

type CommandType string

const (
	CmdRenameParticipant CommandType = "RenameParticipant"
	CmdRenameRoom        CommandType = "RenameRoom"
	CmdCastVote          CommandType = "CastVote"
	CmdRequestReveal     CommandType = "RequestReveal"
	CmdResetRound        CommandType = "ResetRound"
	CmdStartRace         CommandType = "StartRace"
	CmdBeginNextRound    CommandType = "BeginNextRound"
	CmdSubmitInput       CommandType = "SubmitInput"
	CmdSubmitFinish      CommandType = "SubmitFinish"
	CmdTimerFired        CommandType = "TimerFired"
)

/*
	CmdCastVote       -> EvtVoteCast (-> EvtVotesRevealed when already revealed)
	CmdRequestReveal  -> EvtCountdownTick -> EvtTimerStarted
	CmdTimerFired     -> EvtCountdownTick -> EvtTimerStarted, or the phase step the countdown guards
	CmdResetRound     -> EvtTimerCancelled? -> EvtRoundReset
	CmdStartRace      -> EvtRoundPrepared -> EvtCountdownTick -> EvtTimerStarted
	CmdSubmitFinish   -> EvtParticipantFinished (-> EvtFirstFinish -> EvtCountdownTick -> EvtTimerStarted)
*/

type Command struct {
	Type          CommandType
	ParticipantID string
	Vote          string
	Text          string
	Name          string
	Sentence      *Sentence
	Timer         TimerKind
	At            time.Time
}

type EventType string

const (
	EvtParticipantJoined   EventType = "ParticipantJoined"
	EvtParticipantLeft     EventType = "ParticipantLeft"
	EvtParticipantRenamed  EventType = "ParticipantRenamed"
	EvtOwnerChanged        EventType = "OwnerChanged"
	EvtRoomRenamed         EventType = "RoomRenamed"
	EvtVoteCast            EventType = "VoteCast"
	EvtVotesRevealed       EventType = "VotesRevealed"
	EvtRoundReset          EventType = "RoundReset"
	EvtCountdownTick       EventType = "CountdownTick"
	EvtPhaseChanged        EventType = "PhaseChanged"
	EvtRoundPrepared       EventType = "RoundPrepared"
	EvtRaceStarted         EventType = "RaceStarted"
	EvtProgress            EventType = "Progress"
	EvtParticipantFinished EventType = "ParticipantFinished"
	EvtFirstFinish         EventType = "FirstFinish"
	EvtRoundEnded          EventType = "RoundEnded"
	EvtNextRoundReady      EventType = "NextRoundReady"
	EvtTimerStarted        EventType = "TimerStarted"
	EvtTimerCancelled      EventType = "TimerCancelled"
)

type Event struct {
	Type          EventType
	ParticipantID string
	Phase         Phase
	Timer         TimerKind
	Delay         time.Duration
	Remaining     int
	VoteResult    *VoteResult
	Round         *RoundResult
	Rank          int
	ElapsedMs     int64
	Progress      int
	Mismatches    []int
}

// Apply validates cmd against s and, only when it is legal, mutates s.
// A returned error means s was left untouched.
func Apply(s *State, cmd Command) ([]Event, error) {
	if cmd.At.IsZero() {
		cmd.At = time.Now()
	}

	switch cmd.Type {
	case CmdRenameParticipant:
		return renameParticipant(s, cmd)
	case CmdRenameRoom:
		return renameRoom(s, cmd)
	}

	switch s.Kind {
	case KindVoting:
		return applyVoting(s, cmd)
	case KindRace:
		return applyRace(s, cmd)
	default:
		return nil, ErrUnsupportedCommand
	}
}

func member(s *State, id string) (*Participant, error) {
	p, ok := s.Participants[id]
	if !ok {
		return nil, ErrNotMember
	}
	return p, nil
}

// tick moves a running countdown one step. It returns the events for a
// non-final tick, or done=true once the countdown reached zero.
func tick(remaining **int, timer TimerKind) (events []Event, done bool) {
	if *remaining == nil {
		return nil, false
	}
	n := **remaining - 1
	if n <= 0 {
		*remaining = nil
		return nil, true
	}
	*remaining = &n
	return startCountdown(timer, n), false
}

func startCountdown(timer TimerKind, seconds int) []Event {
	return []Event{
		{Type: EvtCountdownTick, Timer: timer, Remaining: seconds},
		{Type: EvtTimerStarted, Timer: timer, Delay: TickInterval},
	}
}
