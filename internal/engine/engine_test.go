package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newRoom(t *testing.T, kind Kind, ids ...string) *State {
	t.Helper()
	s := NewState(kind, "ROOM01", "room", 20, DefaultRules(kind), t0)
	for i, id := range ids {
		p := NewParticipant(id, "conn-"+id, id, t0.Add(time.Duration(i)*time.Second))
		if _, err := AddParticipant(s, p); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	return s
}

func mustApply(t *testing.T, s *State, cmd Command) []Event {
	t.Helper()
	events, err := Apply(s, cmd)
	if err != nil {
		t.Fatalf("apply %s: %v", cmd.Type, err)
	}
	return events
}

// fireN delivers n timer fires and returns the events of the last one.
func fireN(t *testing.T, s *State, timer TimerKind, n int, at time.Time) []Event {
	t.Helper()
	var events []Event
	for i := 0; i < n; i++ {
		events = mustApply(t, s, Command{Type: CmdTimerFired, Timer: timer, At: at})
	}
	return events
}

func TestRejectedCommandLeavesStateUntouched(t *testing.T) {
	cases := []struct {
		name    string
		kind    Kind
		cmd     Command
		wantErr error
	}{
		{"unknown card", KindVoting, Command{Type: CmdCastVote, ParticipantID: "a", Vote: "7"}, ErrInvalidVote},
		{"vote by stranger", KindVoting, Command{Type: CmdCastVote, ParticipantID: "zz", Vote: "5"}, ErrNotMember},
		{"reveal without votes", KindVoting, Command{Type: CmdRequestReveal, ParticipantID: "a"}, ErrNoVotes},
		{"input while waiting", KindRace, Command{Type: CmdSubmitInput, ParticipantID: "a", Text: "x"}, ErrWrongPhase},
		{"start by non-owner", KindRace, Command{Type: CmdStartRace, ParticipantID: "b", Sentence: &Sentence{ID: "s1", Text: "hi"}}, ErrNotOwner},
		{"start without sentence", KindRace, Command{Type: CmdStartRace, ParticipantID: "a"}, ErrNoSentence},
		{"vote in race room", KindRace, Command{Type: CmdCastVote, ParticipantID: "a", Vote: "5"}, ErrUnsupportedCommand},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newRoom(t, tc.kind, "a", "b")
			before := s.LastActivityAt
			phase := s.Phase

			_, err := Apply(s, tc.cmd)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
			assert.Equal(t, phase, s.Phase)
			assert.Equal(t, before, s.LastActivityAt)
			for _, p := range s.Participants {
				assert.Nil(t, p.Vote)
				assert.Empty(t, p.CurrentInput)
			}
		})
	}
}

func TestRevealAfterCountdownAveragesNumericVotes(t *testing.T) {
	s := newRoom(t, KindVoting, "a", "b", "c")
	for id, v := range map[string]string{"a": "5", "b": "5", "c": "8"} {
		mustApply(t, s, Command{Type: CmdCastVote, ParticipantID: id, Vote: v, At: t0})
	}

	events := mustApply(t, s, Command{Type: CmdRequestReveal, ParticipantID: "a", At: t0})
	tickEvt, ok := FindEvent(events, EvtCountdownTick)
	require.True(t, ok)
	assert.Equal(t, 3, tickEvt.Remaining)
	assert.True(t, ContainsEvent(events, EvtTimerStarted))

	_, err := Apply(s, Command{Type: CmdRequestReveal, ParticipantID: "b", At: t0})
	assert.ErrorIs(t, err, ErrCountdownActive)

	events = fireN(t, s, TimerReveal, 2, t0)
	tickEvt, _ = FindEvent(events, EvtCountdownTick)
	assert.Equal(t, 1, tickEvt.Remaining)
	assert.Equal(t, PhaseSelecting, s.Phase)

	events = fireN(t, s, TimerReveal, 1, t0)
	revealed, ok := FindEvent(events, EvtVotesRevealed)
	require.True(t, ok)
	assert.Equal(t, PhaseRevealed, s.Phase)

	res := revealed.VoteResult
	require.NotNil(t, res.Average)
	assert.Equal(t, 6.0, *res.Average)
	assert.Equal(t, 3, res.NumericVoteCount)
	assert.Equal(t, 3, res.VotedParticipants)
	assert.Equal(t, 2, res.Distribution[Vote5])

	// late fire after the reveal
	events, err = Apply(s, Command{Type: CmdTimerFired, Timer: TimerReveal, At: t0})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestVoteAfterRevealRecomputes(t *testing.T) {
	s := newRoom(t, KindVoting, "a", "b")
	s.Rules.RevealCountdownSec = 0
	mustApply(t, s, Command{Type: CmdCastVote, ParticipantID: "a", Vote: "1"})
	mustApply(t, s, Command{Type: CmdRequestReveal, ParticipantID: "a"})
	require.Equal(t, PhaseRevealed, s.Phase)

	events := mustApply(t, s, Command{Type: CmdCastVote, ParticipantID: "b", Vote: "1/2"})
	revealed, ok := FindEvent(events, EvtVotesRevealed)
	require.True(t, ok)
	assert.Equal(t, 0.75, *revealed.VoteResult.Average)
	assert.Equal(t, PhaseRevealed, s.Phase)
}

func TestResetCancelsCountdownAndClearsVotes(t *testing.T) {
	s := newRoom(t, KindVoting, "a", "b")
	mustApply(t, s, Command{Type: CmdCastVote, ParticipantID: "a", Vote: "3"})
	mustApply(t, s, Command{Type: CmdRequestReveal, ParticipantID: "a"})

	events := mustApply(t, s, Command{Type: CmdResetRound, ParticipantID: "b"})
	assert.True(t, ContainsEvent(events, EvtTimerCancelled))
	assert.True(t, ContainsEvent(events, EvtRoundReset))
	assert.Equal(t, PhaseSelecting, s.Phase)
	_, running := s.CountdownRemaining()
	assert.False(t, running)
	assert.Nil(t, s.Participants["a"].Vote)

	events = mustApply(t, s, Command{Type: CmdTimerFired, Timer: TimerReveal})
	assert.Empty(t, events)
	assert.Equal(t, PhaseSelecting, s.Phase)
}

func TestSoloRaceRound(t *testing.T) {
	s := newRoom(t, KindRace, "solo")
	sentence := &Sentence{ID: "s1", Text: "go fast"}

	events := mustApply(t, s, Command{Type: CmdStartRace, ParticipantID: "solo", Sentence: sentence, At: t0})
	require.True(t, ContainsEvent(events, EvtRoundPrepared))
	assert.Equal(t, PhaseCountdown, s.Phase)
	assert.Equal(t, 1, s.Race.RoundNumber)

	_, err := Apply(s, Command{Type: CmdSubmitInput, ParticipantID: "solo", Text: "g"})
	assert.ErrorIs(t, err, ErrWrongPhase)

	start := t0.Add(3 * time.Second)
	events = fireN(t, s, TimerStart, 3, start)
	require.True(t, ContainsEvent(events, EvtRaceStarted))
	assert.Equal(t, PhaseRacing, s.Phase)

	mustApply(t, s, Command{Type: CmdSubmitInput, ParticipantID: "solo", Text: "go ", At: start})
	mustApply(t, s, Command{Type: CmdSubmitInput, ParticipantID: "solo", Text: "go fast", At: start})

	finishAt := start.Add(2500 * time.Millisecond)
	events = mustApply(t, s, Command{Type: CmdSubmitFinish, ParticipantID: "solo", At: finishAt})
	fin, ok := FindEvent(events, EvtParticipantFinished)
	require.True(t, ok)
	assert.Equal(t, 1, fin.Rank)
	assert.Equal(t, int64(2500), fin.ElapsedMs)
	first, ok := FindEvent(events, EvtFirstFinish)
	require.True(t, ok)
	assert.Equal(t, 5, first.Remaining)

	_, err = Apply(s, Command{Type: CmdSubmitFinish, ParticipantID: "solo", At: finishAt})
	assert.ErrorIs(t, err, ErrAlreadyFinished)

	events = fireN(t, s, TimerFinish, 5, finishAt)
	ended, ok := FindEvent(events, EvtRoundEnded)
	require.True(t, ok)
	assert.Equal(t, PhaseRoundEnd, s.Phase)
	require.Len(t, ended.Round.Rankings, 1)
	assert.Equal(t, 1, ended.Round.Rankings[0].Rank)
	assert.True(t, ended.Round.Rankings[0].Finished)

	events = fireN(t, s, TimerNextRound, 3, finishAt)
	assert.True(t, ContainsEvent(events, EvtNextRoundReady))
	assert.Equal(t, PhaseWaiting, s.Phase)

	events = mustApply(t, s, Command{Type: CmdBeginNextRound, Sentence: &Sentence{ID: "s2", Text: "again"}})
	assert.True(t, ContainsEvent(events, EvtRoundPrepared))
	assert.Equal(t, 2, s.Race.RoundNumber)
	assert.Equal(t, "s2", s.Race.LastSentenceID)
	assert.False(t, s.Participants["solo"].Finished)
}

func TestMidRaceJoinerSpectates(t *testing.T) {
	s := newRoom(t, KindRace, "a")
	mustApply(t, s, Command{Type: CmdStartRace, ParticipantID: "a", Sentence: &Sentence{ID: "s1", Text: "abc"}})
	fireN(t, s, TimerStart, 3, t0)
	require.Equal(t, PhaseRacing, s.Phase)

	late := NewParticipant("late", "conn-late", "late", t0.Add(time.Minute))
	_, err := AddParticipant(s, late)
	require.NoError(t, err)
	assert.True(t, late.Spectator)

	_, err = Apply(s, Command{Type: CmdSubmitInput, ParticipantID: "late", Text: "a"})
	assert.ErrorIs(t, err, ErrSpectator)

	mustApply(t, s, Command{Type: CmdSubmitInput, ParticipantID: "a", Text: "abc"})
	mustApply(t, s, Command{Type: CmdSubmitFinish, ParticipantID: "a", At: t0.Add(time.Second)})
	events := fireN(t, s, TimerFinish, 5, t0)
	ended, _ := FindEvent(events, EvtRoundEnded)
	require.Len(t, ended.Round.Rankings, 1)
	assert.Equal(t, "a", ended.Round.Rankings[0].ParticipantID)

	fireN(t, s, TimerNextRound, 3, t0)
	mustApply(t, s, Command{Type: CmdBeginNextRound, Sentence: &Sentence{ID: "s2", Text: "xyz"}})
	assert.False(t, late.Spectator)
}

func TestPasteAndMismatchAreRejected(t *testing.T) {
	s := newRoom(t, KindRace, "a")
	s.Rules.StartCountdownSec = 0
	mustApply(t, s, Command{Type: CmdStartRace, ParticipantID: "a", Sentence: &Sentence{ID: "s1", Text: "the quick brown fox"}})
	require.Equal(t, PhaseRacing, s.Phase)

	_, err := Apply(s, Command{Type: CmdSubmitInput, ParticipantID: "a", Text: "the quick brown fox"})
	assert.ErrorIs(t, err, ErrPasteDetected)
	assert.Empty(t, s.Participants["a"].CurrentInput)

	events := mustApply(t, s, Command{Type: CmdSubmitInput, ParticipantID: "a", Text: "thx quick"})
	prog, _ := FindEvent(events, EvtProgress)
	assert.Equal(t, []int{2}, prog.Mismatches)

	_, err = Apply(s, Command{Type: CmdSubmitFinish, ParticipantID: "a"})
	assert.ErrorIs(t, err, ErrHasMismatches)
	assert.False(t, s.Participants["a"].Finished)
}

func TestOwnerPassesToEarliestJoined(t *testing.T) {
	s := newRoom(t, KindRace, "a", "b", "c")
	require.Equal(t, "a", s.OwnerID)

	_, events, err := RemoveParticipant(s, "a", t0)
	require.NoError(t, err)
	changed, ok := FindEvent(events, EvtOwnerChanged)
	require.True(t, ok)
	assert.Equal(t, "b", changed.ParticipantID)
	assert.Equal(t, "b", s.OwnerID)

	_, _, err = RemoveParticipant(s, "a", t0)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestAddParticipantCapacityAndNames(t *testing.T) {
	s := NewState(KindVoting, "R", "r", 2, DefaultRules(KindVoting), t0)
	_, err := AddParticipant(s, NewParticipant("1", "c1", "kim", t0))
	require.NoError(t, err)
	second := NewParticipant("2", "c2", "kim", t0)
	_, err = AddParticipant(s, second)
	require.NoError(t, err)
	assert.Equal(t, "kim(2)", second.DisplayName)

	_, err = AddParticipant(s, NewParticipant("3", "c3", "lee", t0))
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Len(t, s.Participants, 2)

	mustApply(t, s, Command{Type: CmdRenameParticipant, ParticipantID: "2", Name: "  kim  "})
	assert.Equal(t, "kim(2)", second.DisplayName)

	_, err = Apply(s, Command{Type: CmdRenameRoom, ParticipantID: "1", Name: "   "})
	assert.Error(t, err)
	assert.Equal(t, "r", s.Name)
}

func TestMeasureProgress(t *testing.T) {
	cases := []struct {
		name       string
		input      string
		target     string
		progress   int
		mismatches []int
	}{
		{"empty", "", "abcd", 0, nil},
		{"half", "ab", "abcd", 50, nil},
		{"typo", "axcd", "abcd", 75, []int{1}},
		{"overflow", "abcdef", "abcd", 100, []int{4, 5}},
		{"multibyte", "한글", "한글날", 67, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, m := MeasureProgress(tc.input, tc.target)
			assert.Equal(t, tc.progress, p)
			assert.Equal(t, tc.mismatches, m)
		})
	}
}

func TestCanTransitionNeverSkips(t *testing.T) {
	assert.True(t, canTransition(KindRace, PhaseWaiting, PhaseCountdown))
	assert.False(t, canTransition(KindRace, PhaseWaiting, PhaseRacing))
	assert.False(t, canTransition(KindRace, PhaseCountdown, PhaseRoundEnd))
	assert.True(t, canTransition(KindVoting, PhaseRevealed, PhaseSelecting))
	assert.False(t, canTransition(KindVoting, PhaseSelecting, PhaseWaiting))
	assert.False(t, canTransition(KindVoting, PhaseRevealed, PhaseRevealed))

	s := newRoom(t, KindRace, "a")
	require.ErrorIs(t, setPhase(s, PhaseRacing), ErrWrongPhase)
	assert.Equal(t, PhaseWaiting, s.Phase)

	// a full round walks every phase in order
	seen := []Phase{s.Phase}
	step := func(events []Event) {
		t.Helper()
		if s.Phase != seen[len(seen)-1] {
			seen = append(seen, s.Phase)
		}
	}
	step(mustApply(t, s, Command{Type: CmdStartRace, ParticipantID: "a", Sentence: &Sentence{ID: "s1", Text: "hi"}, At: t0}))
	_, err := Apply(s, Command{Type: CmdStartRace, ParticipantID: "a", Sentence: &Sentence{ID: "s2", Text: "yo"}, At: t0})
	require.ErrorIs(t, err, ErrWrongPhase)
	step(fireN(t, s, TimerStart, 3, t0.Add(3*time.Second)))
	step(mustApply(t, s, Command{Type: CmdSubmitInput, ParticipantID: "a", Text: "hi", At: t0.Add(4 * time.Second)}))
	step(mustApply(t, s, Command{Type: CmdSubmitFinish, ParticipantID: "a", At: t0.Add(4 * time.Second)}))
	step(fireN(t, s, TimerFinish, 5, t0.Add(9*time.Second)))
	step(fireN(t, s, TimerNextRound, 3, t0.Add(12*time.Second)))

	assert.Equal(t, []Phase{PhaseWaiting, PhaseCountdown, PhaseRacing, PhaseRoundEnd, PhaseWaiting}, seen)
	for i := 1; i < len(seen); i++ {
		assert.True(t, canTransition(KindRace, seen[i-1], seen[i]), "%s -> %s", seen[i-1], seen[i])
	}

	v := newRoom(t, KindVoting, "a")
	v.Rules.RevealCountdownSec = 0
	mustApply(t, v, Command{Type: CmdCastVote, ParticipantID: "a", Vote: "5", At: t0})
	mustApply(t, v, Command{Type: CmdRequestReveal, ParticipantID: "a", At: t0})
	require.Equal(t, PhaseRevealed, v.Phase)
	_, err = Apply(v, Command{Type: CmdRequestReveal, ParticipantID: "a", At: t0})
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.Equal(t, PhaseRevealed, v.Phase)
}

func TestRaceEndsWhenLastRacerLeaves(t *testing.T) {
	s := newRoom(t, KindRace, "a")
	s.Rules.StartCountdownSec = 0
	mustApply(t, s, Command{Type: CmdStartRace, ParticipantID: "a", Sentence: &Sentence{ID: "s1", Text: "abc"}})

	watcher := NewParticipant("w", "conn-w", "w", t0.Add(time.Minute))
	_, err := AddParticipant(s, watcher)
	require.NoError(t, err)
	require.True(t, watcher.Spectator)

	_, events, err := RemoveParticipant(s, "a", t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, ContainsEvent(events, EvtRoundEnded))
	assert.Equal(t, PhaseRoundEnd, s.Phase)
	assert.Equal(t, "w", s.OwnerID)
}
