package room

import (
	"go.uber.org/zap"

	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

// publish turns applied events into pushes for every member.
func (r *Room) publish(events []engine.Event, origin, requestID string) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtParticipantJoined:
			p := r.state.Participants[ev.ParticipantID]
			r.broadcast(types.PushRoomUpdate, origin, requestID, func(viewer string) any {
				pv := participantView(r.state, p, viewer)
				return types.RoomUpdate{Reason: types.UpdateJoined, Participant: &pv, Room: roomView(r.state, viewer)}
			})

		case engine.EvtOwnerChanged:
			r.roomUpdate(types.UpdateUpdated, origin, requestID)

		case engine.EvtRoomRenamed:
			r.roomUpdate(types.UpdateRenamed, origin, requestID)

		case engine.EvtPhaseChanged, engine.EvtRoundPrepared:
			r.roomUpdate(types.UpdatePhaseChanged, origin, requestID)

		case engine.EvtParticipantRenamed, engine.EvtVoteCast:
			p, ok := r.state.Participants[ev.ParticipantID]
			if !ok {
				continue
			}
			r.broadcast(types.PushParticipantUpdate, origin, requestID, func(viewer string) any {
				return types.ParticipantUpdate{Participant: participantView(r.state, p, viewer)}
			})

		case engine.EvtVotesRevealed:
			r.broadcastAll(types.PushCardsRevealed, origin, requestID, ev.VoteResult)

		case engine.EvtRoundReset:
			r.broadcast(types.PushRoundReset, origin, requestID, func(viewer string) any {
				return roomView(r.state, viewer)
			})

		case engine.EvtCountdownTick:
			r.broadcastAll(types.PushCountdown, origin, requestID, types.Countdown{Timer: ev.Timer, Remaining: ev.Remaining})

		case engine.EvtRaceStarted:
			rs := r.state.Race
			if rs.Sentence == nil || rs.StartedAt == nil {
				continue
			}
			r.broadcastAll(types.PushRoundStart, origin, requestID, types.RoundStart{
				RoundNumber: rs.RoundNumber,
				Sentence:    sentenceView(*rs.Sentence),
				StartedAt:   *rs.StartedAt,
			})

		case engine.EvtProgress:
			r.broadcastAll(types.PushRaceProgress, origin, requestID, types.RaceProgress{
				ParticipantID: ev.ParticipantID,
				Progress:      ev.Progress,
				Mismatches:    ev.Mismatches,
			})

		case engine.EvtParticipantFinished:
			r.broadcastAll(types.PushPlayerFinish, origin, requestID, r.playerFinish(ev))

		case engine.EvtFirstFinish:
			r.broadcastAll(types.PushFirstFinish, origin, requestID, types.FirstFinish{
				ParticipantID: ev.ParticipantID,
				DisplayName:   r.displayName(ev.ParticipantID),
				ElapsedMs:     ev.ElapsedMs,
				Remaining:     ev.Remaining,
			})

		case engine.EvtRoundEnded:
			r.broadcastAll(types.PushRoundEnd, origin, requestID, ev.Round)
		}
	}
}

func (r *Room) roomUpdate(reason, origin, requestID string) {
	r.broadcast(types.PushRoomUpdate, origin, requestID, func(viewer string) any {
		return types.RoomUpdate{Reason: reason, Room: roomView(r.state, viewer)}
	})
}

func (r *Room) broadcastAll(typ, origin, requestID string, data any) {
	r.broadcast(typ, origin, requestID, func(string) any { return data })
}

// broadcast renders data per member, since what a member may see can depend
// on who they are. Members whose sink refuses the push are dropped and the
// rest are told they went offline.
func (r *Room) broadcast(typ, origin, requestID string, data func(viewer string) any) {
	dropped := false
	for pid, sink := range r.sinks {
		push := types.Push{
			Type:      typ,
			RoomID:    r.id,
			Version:   r.version,
			Origin:    origin,
			RequestID: requestID,
			Data:      data(pid),
		}
		if !sink.Deliver(push) {
			r.log.Warn("dropping slow member", zap.String("participant_id", pid))
			delete(r.sinks, pid)
			if p, ok := r.state.Participants[pid]; ok {
				p.Connected = false
			}
			dropped = true
		}
	}
	if dropped && len(r.sinks) > 0 {
		r.version++
		r.roomUpdate(types.UpdateUpdated, "", "")
	}
}

func (r *Room) playerFinish(ev engine.Event) types.PlayerFinish {
	return types.PlayerFinish{
		ParticipantID: ev.ParticipantID,
		DisplayName:   r.displayName(ev.ParticipantID),
		Rank:          ev.Rank,
		ElapsedMs:     ev.ElapsedMs,
	}
}

func (r *Room) displayName(pid string) string {
	if p, ok := r.state.Participants[pid]; ok {
		return p.DisplayName
	}
	return ""
}
