// Package types holds the JSON wire protocol shared by the room actors and the
// websocket transport.
package types

import (
	"time"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
)

// Client requests.
const (
	ReqCreateRoom     = "create_room"
	ReqJoinRoom       = "join_room"
	ReqLeaveRoom      = "leave_room"
	ReqGetRoomList    = "get_room_list"
	ReqGetRoomInfo    = "get_room_info"
	ReqSelectCard     = "select_card"
	ReqRevealCards    = "reveal_cards"
	ReqResetRound     = "reset_round"
	ReqUpdateUserName = "update_user_name"
	ReqUpdateRoomName = "update_room_name"

	ReqTypingCreateRoom  = "typing_create_room"
	ReqTypingJoinRoom    = "typing_join_room"
	ReqTypingLeaveRoom   = "typing_leave_room"
	ReqTypingGetRoomList = "typing_get_room_list"
	ReqTypingStartGame   = "typing_start_game"
	ReqTypingInput       = "typing_input"
	ReqTypingSubmit      = "typing_submit"

	ReqPing = "ping"
)

// Server pushes.
const (
	PushRoomUpdate        = "room_update"
	PushParticipantUpdate = "participant_update"
	PushCountdown         = "countdown"
	PushCardsRevealed     = "cards_revealed"
	PushRoundReset        = "round_reset"
	PushRoundStart        = "round_start"
	PushRaceProgress      = "race_progress"
	PushPlayerFinish      = "player_finish"
	PushFirstFinish       = "first_finish"
	PushRoundEnd          = "round_end"
	PushRoomClosed        = "room_closed"
	PushPong              = "pong"
)

// room_update reasons.
const (
	UpdateJoined       = "joined"
	UpdateLeft         = "left"
	UpdateUpdated      = "updated"
	UpdateRenamed      = "renamed"
	UpdatePhaseChanged = "phase_changed"
)

// ClientMessage is every request; which fields matter depends on Type.
type ClientMessage struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	RoomID   string `json:"room_id,omitempty"`
	RoomName string `json:"room_name,omitempty"`
	UserName string `json:"user_name,omitempty"`
	Card     string `json:"card,omitempty"`
	Input    string `json:"input,omitempty"`
}

const AckType = "ack"

type Ack struct {
	Type  string     `json:"type"`
	ID    string     `json:"id"`
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code     string `json:"code"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Push is a server-initiated message. Origin and RequestID name the
// participant and request that caused it, so a client can spot its own echo.
type Push struct {
	Type      string `json:"type"`
	RoomID    string `json:"room_id,omitempty"`
	Version   int    `json:"version"`
	Origin    string `json:"origin,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

type ParticipantView struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsOwner     bool   `json:"is_owner"`
	Connected   bool   `json:"connected"`

	HasVoted bool              `json:"has_voted,omitempty"`
	Vote     *engine.VoteValue `json:"vote,omitempty"`

	Progress   int   `json:"progress"`
	Mismatches []int `json:"mismatches,omitempty"`
	Finished   bool  `json:"finished,omitempty"`
	Rank       *int  `json:"rank,omitempty"`
	Spectator  bool  `json:"spectator,omitempty"`
}

type SentenceView struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	DisplayText string `json:"display_text"`
	Length      int    `json:"length"`
}

type RoomView struct {
	ID              string            `json:"id"`
	Kind            engine.Kind       `json:"kind"`
	Name            string            `json:"name"`
	OwnerID         string            `json:"owner_id"`
	Phase           engine.Phase      `json:"phase"`
	MaxParticipants int               `json:"max_participants"`
	Participants    []ParticipantView `json:"participants"`
	CreatedAt       time.Time         `json:"created_at"`
	Countdown       *int              `json:"countdown,omitempty"`

	Result *engine.VoteResult `json:"result,omitempty"`

	RoundNumber int                 `json:"round_number,omitempty"`
	Sentence    *SentenceView       `json:"sentence,omitempty"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	LastRound   *engine.RoundResult `json:"last_round,omitempty"`
}

// RoomSummary is a room list entry.
type RoomSummary struct {
	ID               string       `json:"id"`
	Kind             engine.Kind  `json:"kind"`
	Name             string       `json:"name"`
	Phase            engine.Phase `json:"phase"`
	ParticipantCount int          `json:"participant_count"`
	MaxParticipants  int          `json:"max_participants"`
	CreatedAt        time.Time    `json:"created_at"`
	LastActivityAt   time.Time    `json:"last_activity_at"`
}

// JoinResult is the ack payload for create and join requests.
type JoinResult struct {
	ParticipantID string   `json:"participant_id"`
	DisplayName   string   `json:"display_name"`
	Spectator     bool     `json:"spectator,omitempty"`
	Room          RoomView `json:"room"`
}

type RoomUpdate struct {
	Reason      string           `json:"reason"`
	Participant *ParticipantView `json:"participant,omitempty"`
	Room        RoomView         `json:"room"`
}

type ParticipantUpdate struct {
	Participant ParticipantView `json:"participant"`
}

// VoteAck answers select_card. Result is set once the cards are revealed.
type VoteAck struct {
	Participant ParticipantView    `json:"participant"`
	Result      *engine.VoteResult `json:"result,omitempty"`
}

type Countdown struct {
	Timer     engine.TimerKind `json:"timer"`
	Remaining int              `json:"remaining"`
}

type RoundStart struct {
	RoundNumber int          `json:"round_number"`
	Sentence    SentenceView `json:"sentence"`
	StartedAt   time.Time    `json:"started_at"`
}

type RaceProgress struct {
	ParticipantID string `json:"participant_id"`
	Progress      int    `json:"progress"`
	Mismatches    []int  `json:"mismatches,omitempty"`
}

type PlayerFinish struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Rank          int    `json:"rank"`
	ElapsedMs     int64  `json:"elapsed_ms"`
}

type FirstFinish struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	ElapsedMs     int64  `json:"elapsed_ms"`
	Remaining     int    `json:"remaining"`
}

type RoomClosed struct {
	Reason string `json:"reason"`
}

const (
	CloseExpired  = "expired"
	CloseInactive = "inactive"
	CloseShutdown = "shutdown"
)

type Pong struct {
	ServerTime time.Time `json:"server_time"`
}
