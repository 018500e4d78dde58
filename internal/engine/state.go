package engine

import (
	"time"

	"github.com/DoyleJ11/partyroom-backend/internal/identity"
)

// Rules holds per-room timings in seconds and race thresholds.
type Rules struct {
	RevealCountdownSec int
	StartCountdownSec  int
	FinishGraceSec     int
	NextRoundDelaySec  int
	PasteThreshold     int
	MinRacers          int
}

type Sentence struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	DisplayText string `json:"display_text"`
}

type VotingState struct {
	CountdownRemaining *int
}

type RaceState struct {
	RoundNumber        int
	Sentence           *Sentence
	LastSentenceID     string
	CountdownRemaining *int
	StartedAt          *time.Time
	FirstFinisherID    string
	FirstFinishedAt    *time.Time
	LastResult         *RoundResult
}

type State struct {
	ID              string
	Kind            Kind
	Name            string
	OwnerID         string
	Participants    map[string]*Participant
	MaxParticipants int
	CreatedAt       time.Time
	LastActivityAt  time.Time
	Phase           Phase
	Rules           Rules

	Voting *VotingState
	Race   *RaceState
}

func NewState(kind Kind, id, name string, maxParticipants int, rules Rules, at time.Time) *State {
	s := &State{
		ID:              id,
		Kind:            kind,
		Name:            name,
		Participants:    map[string]*Participant{},
		MaxParticipants: maxParticipants,
		CreatedAt:       at,
		LastActivityAt:  at,
		Phase:           InitialPhase(kind),
		Rules:           rules,
	}
	if kind == KindRace {
		s.Race = &RaceState{}
	} else {
		s.Voting = &VotingState{}
	}
	return s
}

func (s *State) touch(at time.Time) {
	if at.After(s.LastActivityAt) {
		s.LastActivityAt = at
	}
}

// CountdownRemaining reports the seconds left on whichever countdown is running.
func (s *State) CountdownRemaining() (int, bool) {
	var r *int
	switch {
	case s.Voting != nil:
		r = s.Voting.CountdownRemaining
	case s.Race != nil:
		r = s.Race.CountdownRemaining
	}
	if r == nil {
		return 0, false
	}
	return *r, true
}

func (s *State) displayNames(exceptID string) []string {
	names := make([]string, 0, len(s.Participants))
	for id, p := range s.Participants {
		if id == exceptID {
			continue
		}
		names = append(names, p.DisplayName)
	}
	return names
}

func renameParticipant(s *State, cmd Command) ([]Event, error) {
	p, err := member(s, cmd.ParticipantID)
	if err != nil {
		return nil, err
	}
	name, err := identity.ValidateDisplayName(cmd.Name)
	if err != nil {
		return nil, err
	}

	p.RequestedName = name
	p.DisplayName = identity.UniqueName(name, s.displayNames(p.ID))
	p.LastActivityAt = cmd.At
	s.touch(cmd.At)
	return []Event{{Type: EvtParticipantRenamed, ParticipantID: p.ID}}, nil
}

func renameRoom(s *State, cmd Command) ([]Event, error) {
	if _, err := member(s, cmd.ParticipantID); err != nil {
		return nil, err
	}
	name, err := identity.ValidateRoomName(cmd.Name)
	if err != nil {
		return nil, err
	}

	s.Name = name
	s.touch(cmd.At)
	return []Event{{Type: EvtRoomRenamed, ParticipantID: cmd.ParticipantID}}, nil
}
