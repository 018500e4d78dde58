package room

import (
	"context"
	"errors"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

// call delivers m and waits for its reply, failing with ErrClosed once the
// actor has exited.
func call[T any](ctx context.Context, r *Room, m Msg, reply <-chan T) (T, error) {
	var zero T
	select {
	case r.inbox <- m:
	case <-r.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (r *Room) Join(ctx context.Context, connID, name, requestID string, sink Sink) (types.JoinResult, error) {
	reply := make(chan joinReply, 1)
	res, err := call(ctx, r, Join{ConnID: connID, Name: name, RequestID: requestID, Sink: sink, Reply: reply}, reply)
	if err != nil {
		return types.JoinResult{}, err
	}
	return res.res, res.err
}

// Leave removes the connection's participant and reports how many remain.
func (r *Room) Leave(ctx context.Context, connID, requestID string) (int, error) {
	reply := make(chan leaveReply, 1)
	res, err := call(ctx, r, Leave{ConnID: connID, RequestID: requestID, Reply: reply}, reply)
	if err != nil {
		return 0, err
	}
	return res.remaining, res.err
}

// Do applies a client command on behalf of connID and returns the ack payload.
func (r *Room) Do(ctx context.Context, connID, requestID string, cmd engine.Command) (any, error) {
	reply := make(chan requestReply, 1)
	res, err := call(ctx, r, Request{ConnID: connID, RequestID: requestID, Cmd: cmd, Reply: reply}, reply)
	if err != nil {
		return nil, err
	}
	return res.data, res.err
}

func (r *Room) Info(ctx context.Context, connID string) (types.RoomView, error) {
	reply := make(chan types.RoomView, 1)
	return call(ctx, r, GetInfo{ConnID: connID, Reply: reply}, reply)
}

func (r *Room) Summary(ctx context.Context) (types.RoomSummary, error) {
	reply := make(chan types.RoomSummary, 1)
	return call(ctx, r, GetSummary{Reply: reply}, reply)
}

func (r *Room) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	return call(ctx, r, GetState{Reply: reply}, reply)
}

// Close tells members the room is gone, stops its timers and ends the actor.
// Closing an already closed room is a no-op.
func (r *Room) Close(ctx context.Context, reason string) error {
	reply := make(chan struct{})
	_, err := call(ctx, r, Close{Reason: reason, Reply: reply}, reply)
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}
