package engine

func applyVoting(s *State, cmd Command) ([]Event, error) {
	switch cmd.Type {
	case CmdCastVote:
		return castVote(s, cmd)
	case CmdRequestReveal:
		return requestReveal(s, cmd)
	case CmdResetRound:
		return resetRound(s, cmd)
	case CmdTimerFired:
		if cmd.Timer != TimerReveal {
			return nil, ErrUnsupportedCommand
		}
		return revealTick(s, cmd)
	default:
		return nil, ErrUnsupportedCommand
	}
}

// Votes may still change after the reveal; the result is recomputed live.
func castVote(s *State, cmd Command) ([]Event, error) {
	p, err := member(s, cmd.ParticipantID)
	if err != nil {
		return nil, err
	}
	if s.Phase != PhaseSelecting && s.Phase != PhaseRevealed {
		return nil, ErrWrongPhase
	}
	v, err := ParseVote(cmd.Vote)
	if err != nil {
		return nil, err
	}

	p.Vote = &v
	p.LastActivityAt = cmd.At
	s.touch(cmd.At)

	events := []Event{{Type: EvtVoteCast, ParticipantID: p.ID}}
	if s.Phase == PhaseRevealed {
		res := ComputeVoteResult(s)
		events = append(events, Event{Type: EvtVotesRevealed, Phase: s.Phase, VoteResult: &res})
	}
	return events, nil
}

func requestReveal(s *State, cmd Command) ([]Event, error) {
	if _, err := member(s, cmd.ParticipantID); err != nil {
		return nil, err
	}
	if !canTransition(s.Kind, s.Phase, PhaseRevealed) {
		return nil, ErrWrongPhase
	}
	if s.Voting.CountdownRemaining != nil {
		return nil, ErrCountdownActive
	}
	if !anyVote(s) {
		return nil, ErrNoVotes
	}

	s.touch(cmd.At)
	secs := s.Rules.RevealCountdownSec
	if secs <= 0 {
		return reveal(s)
	}
	s.Voting.CountdownRemaining = &secs
	return startCountdown(TimerReveal, secs), nil
}

// A tick with no countdown running is a late fire and changes nothing.
func revealTick(s *State, cmd Command) ([]Event, error) {
	if s.Phase != PhaseSelecting {
		return nil, nil
	}
	events, done := tick(&s.Voting.CountdownRemaining, TimerReveal)
	if !done {
		return events, nil
	}
	return reveal(s)
}

func reveal(s *State) ([]Event, error) {
	if err := setPhase(s, PhaseRevealed); err != nil {
		return nil, err
	}
	s.Voting.CountdownRemaining = nil
	res := ComputeVoteResult(s)
	return []Event{{Type: EvtVotesRevealed, Phase: s.Phase, VoteResult: &res}}, nil
}

func resetRound(s *State, cmd Command) ([]Event, error) {
	if _, err := member(s, cmd.ParticipantID); err != nil {
		return nil, err
	}
	if err := setPhase(s, PhaseSelecting); err != nil {
		return nil, err
	}

	var events []Event
	if s.Voting.CountdownRemaining != nil {
		s.Voting.CountdownRemaining = nil
		events = append(events, Event{Type: EvtTimerCancelled, Timer: TimerReveal})
	}
	for _, p := range s.Participants {
		p.Vote = nil
	}
	s.touch(cmd.At)

	return append(events, Event{Type: EvtRoundReset, Phase: s.Phase}), nil
}

func anyVote(s *State) bool {
	for _, p := range s.Participants {
		if p.Vote != nil {
			return true
		}
	}
	return false
}
