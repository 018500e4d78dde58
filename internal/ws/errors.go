package ws

import (
	"errors"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/hub"
	"github.com/DoyleJ11/partyroom-backend/internal/identity"
	"github.com/DoyleJ11/partyroom-backend/internal/room"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

var ErrUnknownRequest = errors.New("unknown request type")
var ErrBadRequest = errors.New("malformed request")

const (
	CategoryValidation = "validation"
	CategoryConflict   = "conflict"
	CategoryNotFound   = "not_found"
	CategoryInternal   = "internal"
)

const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeInternal          = "INTERNAL_ERROR"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeRoomFull          = "ROOM_FULL"
	CodeRoomLimitReached  = "ROOM_LIMIT_REACHED"
	CodeInvalidRoomName   = "INVALID_ROOM_NAME"
	CodeInvalidUserName   = "INVALID_USER_NAME"
	CodeAlreadyInRoom     = "ALREADY_IN_ROOM"
	CodeUserNotInRoom     = "USER_NOT_IN_ROOM"
	CodeInvalidCard       = "INVALID_CARD"
	CodeGameNotInProgress = "GAME_NOT_IN_PROGRESS"
	CodeNoVotes           = "NO_VOTES"
	CodeCountdownActive   = "COUNTDOWN_ACTIVE"
	CodeNotRoomOwner      = "NOT_ROOM_OWNER"
	CodeNotEnoughPlayers  = "NOT_ENOUGH_PLAYERS"
	CodeIsSpectator       = "IS_SPECTATOR"
	CodeAlreadyFinished   = "ALREADY_FINISHED"
	CodePasteDetected     = "PASTE_DETECTED"
	CodeHasErrors         = "HAS_ERRORS"
)

var errorCodes = []struct {
	err      error
	code     string
	category string
}{
	{ErrBadRequest, CodeInvalidRequest, CategoryValidation},
	{ErrUnknownRequest, CodeInvalidRequest, CategoryValidation},
	{engine.ErrUnsupportedCommand, CodeInvalidRequest, CategoryValidation},
	{hub.ErrRoomNotFound, CodeRoomNotFound, CategoryNotFound},
	{room.ErrClosed, CodeRoomNotFound, CategoryNotFound},
	{engine.ErrRoomFull, CodeRoomFull, CategoryConflict},
	{hub.ErrRoomLimitReached, CodeRoomLimitReached, CategoryConflict},
	{identity.ErrInvalidRoomName, CodeInvalidRoomName, CategoryValidation},
	{identity.ErrInvalidDisplayName, CodeInvalidUserName, CategoryValidation},
	{hub.ErrAlreadyInRoom, CodeAlreadyInRoom, CategoryConflict},
	{room.ErrAlreadyJoined, CodeAlreadyInRoom, CategoryConflict},
	{engine.ErrDuplicateParticipant, CodeAlreadyInRoom, CategoryConflict},
	{hub.ErrNotInRoom, CodeUserNotInRoom, CategoryNotFound},
	{engine.ErrNotMember, CodeUserNotInRoom, CategoryNotFound},
	{engine.ErrInvalidVote, CodeInvalidCard, CategoryValidation},
	{engine.ErrWrongPhase, CodeGameNotInProgress, CategoryConflict},
	{engine.ErrNoVotes, CodeNoVotes, CategoryConflict},
	{engine.ErrCountdownActive, CodeCountdownActive, CategoryConflict},
	{engine.ErrNotOwner, CodeNotRoomOwner, CategoryConflict},
	{engine.ErrNotEnoughRacers, CodeNotEnoughPlayers, CategoryConflict},
	{engine.ErrSpectator, CodeIsSpectator, CategoryConflict},
	{engine.ErrAlreadyFinished, CodeAlreadyFinished, CategoryConflict},
	{engine.ErrPasteDetected, CodePasteDetected, CategoryValidation},
	{engine.ErrHasMismatches, CodeHasErrors, CategoryValidation},
}

// errorBody maps err onto its wire code. Anything unrecognised is internal
// and its detail is not sent to the client.
func errorBody(err error) (body *types.ErrorBody, internal bool) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return &types.ErrorBody{Code: e.code, Category: e.category, Message: e.err.Error()}, false
		}
	}
	return &types.ErrorBody{Code: CodeInternal, Category: CategoryInternal, Message: "internal error"}, true
}
