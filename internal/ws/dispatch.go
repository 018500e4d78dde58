package ws

import (
	"context"
	"fmt"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/room"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

// Registry is the part of the hub the transport needs.
type Registry interface {
	CreateRoom(ctx context.Context, connID string, kind engine.Kind, roomName, userName, requestID string, sink room.Sink) (types.JoinResult, error)
	JoinRoom(ctx context.Context, connID, roomID string, kind engine.Kind, userName, requestID string, sink room.Sink) (types.JoinResult, error)
	Leave(ctx context.Context, connID, requestID string) error
	ListRooms(ctx context.Context, kind engine.Kind) ([]types.RoomSummary, error)
	Get(ctx context.Context, roomID string) (*room.Room, error)
	RoomFor(ctx context.Context, connID string) (*room.Room, error)
}

// roomCommands maps in-room requests onto engine commands.
var roomCommands = map[string]func(m types.ClientMessage) engine.Command{
	types.ReqSelectCard: func(m types.ClientMessage) engine.Command {
		return engine.Command{Type: engine.CmdCastVote, Vote: m.Card}
	},
	types.ReqRevealCards: func(types.ClientMessage) engine.Command {
		return engine.Command{Type: engine.CmdRequestReveal}
	},
	types.ReqResetRound: func(types.ClientMessage) engine.Command {
		return engine.Command{Type: engine.CmdResetRound}
	},
	types.ReqUpdateUserName: func(m types.ClientMessage) engine.Command {
		return engine.Command{Type: engine.CmdRenameParticipant, Name: m.UserName}
	},
	types.ReqUpdateRoomName: func(m types.ClientMessage) engine.Command {
		return engine.Command{Type: engine.CmdRenameRoom, Name: m.RoomName}
	},
	types.ReqTypingStartGame: func(types.ClientMessage) engine.Command {
		return engine.Command{Type: engine.CmdStartRace}
	},
	types.ReqTypingInput: func(m types.ClientMessage) engine.Command {
		return engine.Command{Type: engine.CmdSubmitInput, Text: m.Input}
	},
	types.ReqTypingSubmit: func(types.ClientMessage) engine.Command {
		return engine.Command{Type: engine.CmdSubmitFinish}
	},
}

// dispatch runs one request for s and returns the ack payload.
func dispatch(ctx context.Context, reg Registry, s *session, m types.ClientMessage) (any, error) {
	switch m.Type {
	case types.ReqCreateRoom:
		return reg.CreateRoom(ctx, s.id, engine.KindVoting, m.RoomName, m.UserName, m.ID, s)
	case types.ReqTypingCreateRoom:
		return reg.CreateRoom(ctx, s.id, engine.KindRace, m.RoomName, m.UserName, m.ID, s)

	case types.ReqJoinRoom:
		return reg.JoinRoom(ctx, s.id, m.RoomID, engine.KindVoting, m.UserName, m.ID, s)
	case types.ReqTypingJoinRoom:
		return reg.JoinRoom(ctx, s.id, m.RoomID, engine.KindRace, m.UserName, m.ID, s)

	case types.ReqLeaveRoom, types.ReqTypingLeaveRoom:
		return nil, reg.Leave(ctx, s.id, m.ID)

	case types.ReqGetRoomList:
		return reg.ListRooms(ctx, engine.KindVoting)
	case types.ReqTypingGetRoomList:
		return reg.ListRooms(ctx, engine.KindRace)

	case types.ReqGetRoomInfo:
		rm, err := lookup(ctx, reg, s.id, m.RoomID)
		if err != nil {
			return nil, err
		}
		return rm.Info(ctx, s.id)
	}

	toCmd, ok := roomCommands[m.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, m.Type)
	}
	rm, err := reg.RoomFor(ctx, s.id)
	if err != nil {
		return nil, err
	}
	return rm.Do(ctx, s.id, m.ID, toCmd(m))
}

func lookup(ctx context.Context, reg Registry, connID, roomID string) (*room.Room, error) {
	if roomID != "" {
		return reg.Get(ctx, roomID)
	}
	return reg.RoomFor(ctx, connID)
}
