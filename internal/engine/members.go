package engine

import (
	"time"

	"github.com/DoyleJ11/partyroom-backend/internal/identity"
)

// AddParticipant admits p, deduplicating its display name against the room.
// Race joiners arriving during a countdown or a running race sit the round out.
func AddParticipant(s *State, p *Participant) ([]Event, error) {
	if _, dup := s.Participants[p.ID]; dup {
		return nil, ErrDuplicateParticipant
	}
	if s.MaxParticipants > 0 && len(s.Participants) >= s.MaxParticipants {
		return nil, ErrRoomFull
	}

	p.DisplayName = identity.UniqueName(p.RequestedName, s.displayNames(""))
	if s.Kind == KindRace && (s.Phase == PhaseCountdown || s.Phase == PhaseRacing) {
		p.Spectator = true
	}
	s.Participants[p.ID] = p
	if s.OwnerID == "" {
		s.OwnerID = p.ID
	}
	s.touch(p.JoinedAt)

	return []Event{{Type: EvtParticipantJoined, ParticipantID: p.ID}}, nil
}

// RemoveParticipant drops id from the room and hands ownership to the
// earliest-joined remaining participant when the owner leaves.
func RemoveParticipant(s *State, id string, at time.Time) (*Participant, []Event, error) {
	p, err := member(s, id)
	if err != nil {
		return nil, nil, err
	}
	delete(s.Participants, id)
	s.touch(at)

	events := []Event{{Type: EvtParticipantLeft, ParticipantID: id}}
	if s.OwnerID == id {
		s.OwnerID = ""
		if next := earliestJoined(s); next != nil {
			s.OwnerID = next.ID
			events = append(events, Event{Type: EvtOwnerChanged, ParticipantID: next.ID})
		}
	}
	if abandoned(s) {
		ended, err := endRound(s, at)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, ended...)
	}
	return p, events, nil
}

func earliestJoined(s *State) *Participant {
	var best *Participant
	for _, p := range s.Participants {
		if best == nil || compareJoin(p, best) < 0 {
			best = p
		}
	}
	return best
}

// Ordered returns participants by join order.
func (s *State) Ordered() []*Participant {
	out := make([]*Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		out = append(out, p)
	}
	sortByJoin(out)
	return out
}
