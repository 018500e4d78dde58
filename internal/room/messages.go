package room

import (
	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

type Msg interface{ isRoomMsg() }

type Join struct {
	ConnID    string
	Name      string
	RequestID string
	Sink      Sink
	Reply     chan joinReply
}

func (Join) isRoomMsg() {}

type Leave struct {
	ConnID    string
	RequestID string
	Reply     chan leaveReply
}

func (Leave) isRoomMsg() {}

// Request carries a client command; the actor fills in the participant and time.
type Request struct {
	ConnID    string
	RequestID string
	Cmd       engine.Command
	Reply     chan requestReply
}

func (Request) isRoomMsg() {}

type TimerFired struct {
	Timer engine.TimerKind
	Gen   uint64
}

func (TimerFired) isRoomMsg() {}

type GetInfo struct {
	ConnID string
	Reply  chan types.RoomView
}

func (GetInfo) isRoomMsg() {}

type GetSummary struct {
	Reply chan types.RoomSummary
}

func (GetSummary) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Close struct {
	Reason string
	Reply  chan struct{}
}

func (Close) isRoomMsg() {}

// View is a race-free copy of the actor's bookkeeping for tests and diagnostics.
type View struct {
	Version       int
	NumSinks      int
	PendingTimers int
	Room          types.RoomView
}

type joinReply struct {
	res types.JoinResult
	err error
}

type leaveReply struct {
	remaining int
	err       error
}

type requestReply struct {
	data any
	err  error
}
