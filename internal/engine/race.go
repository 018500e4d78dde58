package engine

import "time"

func applyRace(s *State, cmd Command) ([]Event, error) {
	switch cmd.Type {
	case CmdStartRace:
		return startRace(s, cmd, true)
	case CmdBeginNextRound:
		return startRace(s, cmd, false)
	case CmdSubmitInput:
		return submitInput(s, cmd)
	case CmdSubmitFinish:
		return submitFinish(s, cmd)
	case CmdTimerFired:
		return raceTick(s, cmd)
	default:
		return nil, ErrUnsupportedCommand
	}
}

// startRace opens a new round. Starting clears every spectator flag, so every
// participant present counts towards the minimum.
func startRace(s *State, cmd Command, byOwner bool) ([]Event, error) {
	if byOwner {
		if _, err := member(s, cmd.ParticipantID); err != nil {
			return nil, err
		}
	}
	if !canTransition(s.Kind, s.Phase, PhaseCountdown) {
		return nil, ErrWrongPhase
	}
	if byOwner && cmd.ParticipantID != s.OwnerID {
		return nil, ErrNotOwner
	}
	if len(s.Participants) == 0 || len(s.Participants) < s.Rules.MinRacers {
		return nil, ErrNotEnoughRacers
	}
	if cmd.Sentence == nil || cmd.Sentence.Text == "" {
		return nil, ErrNoSentence
	}

	if err := setPhase(s, PhaseCountdown); err != nil {
		return nil, err
	}
	rs := s.Race
	sentence := *cmd.Sentence
	rs.RoundNumber++
	rs.Sentence = &sentence
	rs.LastSentenceID = sentence.ID
	rs.StartedAt = nil
	rs.FirstFinisherID = ""
	rs.FirstFinishedAt = nil
	for _, p := range s.Participants {
		p.resetRace()
	}
	s.touch(cmd.At)

	events := []Event{{Type: EvtRoundPrepared, ParticipantID: cmd.ParticipantID, Phase: s.Phase}}
	secs := s.Rules.StartCountdownSec
	if secs <= 0 {
		racing, err := beginRacing(s, cmd.At)
		return append(events, racing...), err
	}
	rs.CountdownRemaining = &secs
	return append(events, startCountdown(TimerStart, secs)...), nil
}

func beginRacing(s *State, at time.Time) ([]Event, error) {
	if err := setPhase(s, PhaseRacing); err != nil {
		return nil, err
	}
	s.Race.CountdownRemaining = nil
	s.Race.StartedAt = &at
	events := []Event{{Type: EvtRaceStarted, Phase: s.Phase}}
	if !abandoned(s) {
		return events, nil
	}
	ended, err := endRound(s, at)
	return append(events, ended...), err
}

// abandoned reports a running race that nobody can finish any more and whose
// finish window has not been opened.
func abandoned(s *State) bool {
	if s.Kind != KindRace || s.Phase != PhaseRacing || s.Race.FirstFinisherID != "" {
		return false
	}
	for _, p := range s.Participants {
		if !p.Spectator && !p.Finished {
			return false
		}
	}
	return true
}

func submitInput(s *State, cmd Command) ([]Event, error) {
	p, err := racer(s, cmd.ParticipantID)
	if err != nil {
		return nil, err
	}
	if th := s.Rules.PasteThreshold; th > 0 {
		if RuneLen(cmd.Text)-RuneLen(p.CurrentInput) > th {
			return nil, ErrPasteDetected
		}
	}

	progress, mismatches := MeasureProgress(cmd.Text, s.Race.Sentence.Text)
	p.CurrentInput = cmd.Text
	p.Progress = progress
	p.Mismatches = mismatches
	p.LastActivityAt = cmd.At
	s.touch(cmd.At)

	return []Event{{
		Type:          EvtProgress,
		ParticipantID: p.ID,
		Progress:      progress,
		Mismatches:    mismatches,
	}}, nil
}

func submitFinish(s *State, cmd Command) ([]Event, error) {
	p, err := racer(s, cmd.ParticipantID)
	if err != nil {
		return nil, err
	}
	if p.CurrentInput != s.Race.Sentence.Text {
		return nil, ErrHasMismatches
	}

	rank := finishedCount(s) + 1
	at := cmd.At
	p.Finished = true
	p.FinishedAt = &at
	p.Rank = &rank
	p.Progress = 100
	p.Mismatches = nil
	p.LastActivityAt = at
	s.touch(at)

	elapsed := elapsedMs(s, at)
	events := []Event{{Type: EvtParticipantFinished, ParticipantID: p.ID, Rank: rank, ElapsedMs: elapsed}}
	if s.Race.FirstFinisherID != "" {
		return events, nil
	}

	s.Race.FirstFinisherID = p.ID
	s.Race.FirstFinishedAt = &at
	grace := s.Rules.FinishGraceSec
	events = append(events, Event{Type: EvtFirstFinish, ParticipantID: p.ID, ElapsedMs: elapsed, Remaining: grace})
	if grace <= 0 {
		ended, err := endRound(s, at)
		return append(events, ended...), err
	}
	s.Race.CountdownRemaining = &grace
	return append(events, startCountdown(TimerFinish, grace)...), nil
}

// raceTick advances whichever countdown matches the fired timer. Fires that
// no longer match the phase are ignored.
func raceTick(s *State, cmd Command) ([]Event, error) {
	var want Phase
	switch cmd.Timer {
	case TimerStart:
		want = PhaseCountdown
	case TimerFinish:
		want = PhaseRacing
	case TimerNextRound:
		want = PhaseRoundEnd
	default:
		return nil, ErrUnsupportedCommand
	}
	if s.Phase != want {
		return nil, nil
	}
	if cmd.Timer == TimerFinish && s.Race.FirstFinisherID == "" {
		return nil, nil
	}

	events, done := tick(&s.Race.CountdownRemaining, cmd.Timer)
	if !done {
		return events, nil
	}
	switch cmd.Timer {
	case TimerStart:
		return beginRacing(s, cmd.At)
	case TimerFinish:
		return endRound(s, cmd.At)
	default:
		return roundOver(s)
	}
}

func roundOver(s *State) ([]Event, error) {
	if err := setPhase(s, PhaseWaiting); err != nil {
		return nil, err
	}
	return []Event{
		{Type: EvtPhaseChanged, Phase: s.Phase},
		{Type: EvtNextRoundReady},
	}, nil
}

func endRound(s *State, at time.Time) ([]Event, error) {
	if err := setPhase(s, PhaseRoundEnd); err != nil {
		return nil, err
	}
	s.Race.CountdownRemaining = nil

	ranking := ComputeRaceRanking(s)
	for _, e := range ranking {
		if p, ok := s.Participants[e.ParticipantID]; ok {
			rank := e.Rank
			p.Rank = &rank
		}
	}
	res := &RoundResult{
		RoundNumber: s.Race.RoundNumber,
		Rankings:    ranking,
		StartedAt:   s.Race.StartedAt,
		EndedAt:     at,
	}
	if s.Race.Sentence != nil {
		res.SentenceID = s.Race.Sentence.ID
	}
	s.Race.LastResult = res

	delay := s.Rules.NextRoundDelaySec
	events := []Event{{Type: EvtRoundEnded, Phase: s.Phase, Round: res, Remaining: delay}}
	if delay <= 0 {
		waiting, err := roundOver(s)
		return append(events, waiting...), err
	}
	s.Race.CountdownRemaining = &delay
	return append(events, startCountdown(TimerNextRound, delay)...), nil
}

// racer returns the participant if it may type in the running round.
func racer(s *State, id string) (*Participant, error) {
	p, err := member(s, id)
	if err != nil {
		return nil, err
	}
	if s.Phase != PhaseRacing {
		return nil, ErrWrongPhase
	}
	if s.Race.Sentence == nil {
		return nil, ErrNoSentence
	}
	if p.Spectator {
		return nil, ErrSpectator
	}
	if p.Finished {
		return nil, ErrAlreadyFinished
	}
	return p, nil
}

func finishedCount(s *State) int {
	n := 0
	for _, p := range s.Participants {
		if p.Finished {
			n++
		}
	}
	return n
}

func elapsedMs(s *State, at time.Time) int64 {
	if s.Race.StartedAt == nil {
		return 0
	}
	return at.Sub(*s.Race.StartedAt).Milliseconds()
}
