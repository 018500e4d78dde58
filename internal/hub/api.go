package hub

import (
	"context"
	"errors"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/room"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

func call[T any](ctx context.Context, h *Hub, m HubMsg, reply <-chan T) (T, error) {
	var zero T
	select {
	case h.inbox <- m:
	case <-h.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-h.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// CreateRoom opens a room of kind and joins connID to it as its owner.
func (h *Hub) CreateRoom(ctx context.Context, connID string, kind engine.Kind, roomName, userName, requestID string, sink room.Sink) (types.JoinResult, error) {
	reply := make(chan joinReply, 1)
	res, err := call(ctx, h, CreateRoom{
		ConnID: connID, Kind: kind, RoomName: roomName, UserName: userName,
		RequestID: requestID, Sink: sink, Reply: reply,
	}, reply)
	if err != nil {
		return types.JoinResult{}, err
	}
	return res.res, res.err
}

func (h *Hub) JoinRoom(ctx context.Context, connID, roomID string, kind engine.Kind, userName, requestID string, sink room.Sink) (types.JoinResult, error) {
	reply := make(chan joinReply, 1)
	res, err := call(ctx, h, JoinRoom{
		ConnID: connID, RoomID: roomID, Kind: kind, UserName: userName,
		RequestID: requestID, Sink: sink, Reply: reply,
	}, reply)
	if err != nil {
		return types.JoinResult{}, err
	}
	return res.res, res.err
}

// Leave takes connID out of its room. Leaving when in no room is a no-op.
func (h *Hub) Leave(ctx context.Context, connID, requestID string) error {
	reply := make(chan error, 1)
	err, callErr := call(ctx, h, LeaveRoom{ConnID: connID, RequestID: requestID, Reply: reply}, reply)
	if callErr != nil {
		return callErr
	}
	return err
}

func (h *Hub) ListRooms(ctx context.Context, kind engine.Kind) ([]types.RoomSummary, error) {
	reply := make(chan []types.RoomSummary, 1)
	return call(ctx, h, ListRooms{Kind: kind, Reply: reply}, reply)
}

func (h *Hub) Get(ctx context.Context, roomID string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	rm, err := call(ctx, h, GetRoom{RoomID: roomID, Reply: reply}, reply)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// RoomFor returns the room connID is in, or ErrNotInRoom.
func (h *Hub) RoomFor(ctx context.Context, connID string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	rm, err := call(ctx, h, RoomFor{ConnID: connID, Reply: reply}, reply)
	if err != nil {
		return nil, err
	}
	if rm == nil {
		return nil, ErrNotInRoom
	}
	return rm, nil
}

// Shutdown closes every room and stops the hub.
func (h *Hub) Shutdown(ctx context.Context) error {
	reply := make(chan struct{})
	_, err := call(ctx, h, ShutdownHub{Reply: reply}, reply)
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}
