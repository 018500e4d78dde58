package hub

import (
	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/room"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

type HubMsg interface{ isHubMsg() }

type CreateRoom struct {
	ConnID    string
	Kind      engine.Kind
	RoomName  string
	UserName  string
	RequestID string
	Sink      room.Sink
	Reply     chan joinReply
}

// JoinRoom joins RoomID; a non-empty Kind must match the room's kind.
type JoinRoom struct {
	ConnID    string
	RoomID    string
	Kind      engine.Kind
	UserName  string
	RequestID string
	Sink      room.Sink
	Reply     chan joinReply
}

type LeaveRoom struct {
	ConnID    string
	RequestID string
	Reply     chan error
}

type ListRooms struct {
	Kind  engine.Kind
	Reply chan []types.RoomSummary
}

type GetRoom struct {
	RoomID string
	Reply  chan *room.Room
}

type RoomFor struct {
	ConnID string
	Reply  chan *room.Room
}

type ShutdownHub struct {
	Reply chan struct{}
}

type expiryFired struct {
	RoomID string
	Gen    uint64
}

// roomVacated reports a room that emptied after the hub stopped waiting on it.
type roomVacated struct {
	RoomID string
}

type joinReply struct {
	res types.JoinResult
	err error
}

func (CreateRoom) isHubMsg()  {}
func (JoinRoom) isHubMsg()    {}
func (LeaveRoom) isHubMsg()   {}
func (ListRooms) isHubMsg()   {}
func (GetRoom) isHubMsg()     {}
func (RoomFor) isHubMsg()     {}
func (ShutdownHub) isHubMsg() {}
func (expiryFired) isHubMsg() {}
func (roomVacated) isHubMsg() {}
