package room

import (
	"github.com/DoyleJ11/partyroom-backend/internal/engine"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

// participantView renders p as seen by viewer. Other participants' cards stay
// hidden until the reveal.
func participantView(s *engine.State, p *engine.Participant, viewer string) types.ParticipantView {
	v := types.ParticipantView{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		IsOwner:     s.OwnerID == p.ID,
		Connected:   p.Connected,
	}
	switch s.Kind {
	case engine.KindVoting:
		v.HasVoted = p.Vote != nil
		if p.Vote != nil && (s.Phase == engine.PhaseRevealed || p.ID == viewer) {
			vote := *p.Vote
			v.Vote = &vote
		}
	case engine.KindRace:
		v.Progress = p.Progress
		v.Mismatches = p.Mismatches
		v.Finished = p.Finished
		v.Rank = p.Rank
		v.Spectator = p.Spectator
	}
	return v
}

func roomView(s *engine.State, viewer string) types.RoomView {
	v := types.RoomView{
		ID:              s.ID,
		Kind:            s.Kind,
		Name:            s.Name,
		OwnerID:         s.OwnerID,
		Phase:           s.Phase,
		MaxParticipants: s.MaxParticipants,
		CreatedAt:       s.CreatedAt,
	}
	for _, p := range s.Ordered() {
		v.Participants = append(v.Participants, participantView(s, p, viewer))
	}
	if n, ok := s.CountdownRemaining(); ok {
		v.Countdown = &n
	}

	switch s.Kind {
	case engine.KindVoting:
		if s.Phase == engine.PhaseRevealed {
			res := engine.ComputeVoteResult(s)
			v.Result = &res
		}
	case engine.KindRace:
		v.RoundNumber = s.Race.RoundNumber
		v.StartedAt = s.Race.StartedAt
		v.LastRound = s.Race.LastResult
		// the sentence stays secret until the race starts
		if s.Race.Sentence != nil && s.Phase != engine.PhaseCountdown {
			sv := sentenceView(*s.Race.Sentence)
			v.Sentence = &sv
		}
	}
	return v
}

func sentenceView(s engine.Sentence) types.SentenceView {
	return types.SentenceView{
		ID:          s.ID,
		Text:        s.Text,
		DisplayText: s.DisplayText,
		Length:      engine.RuneLen(s.Text),
	}
}

func summary(s *engine.State) types.RoomSummary {
	return types.RoomSummary{
		ID:               s.ID,
		Kind:             s.Kind,
		Name:             s.Name,
		Phase:            s.Phase,
		ParticipantCount: len(s.Participants),
		MaxParticipants:  s.MaxParticipants,
		CreatedAt:        s.CreatedAt,
		LastActivityAt:   s.LastActivityAt,
	}
}
