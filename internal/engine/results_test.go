package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vote(v VoteValue) *VoteValue { return &v }

func TestComputeVoteResultAverage(t *testing.T) {
	cases := []struct {
		name    string
		votes   []VoteValue
		average *float64
		numeric int
	}{
		{"no votes", nil, nil, 0},
		{"only non numeric", []VoteValue{VoteUnknown, VoteCoffee}, nil, 0},
		{"zero is a real mean", []VoteValue{Vote0, Vote0, VoteCoffee}, ptr(0.0), 2},
		{"rounded to two decimals", []VoteValue{Vote1, Vote2, Vote2}, ptr(1.67), 3},
		{"half card", []VoteValue{VoteHalf, Vote1}, ptr(0.75), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewState(KindVoting, "R", "r", 20, Rules{}, t0)
			for i, v := range tc.votes {
				p := NewParticipant(string(rune('a'+i)), "", "p", t0)
				p.Vote = vote(v)
				s.Participants[p.ID] = p
			}
			s.Participants["idle"] = NewParticipant("idle", "", "idle", t0)

			res := ComputeVoteResult(s)
			assert.Equal(t, len(tc.votes)+1, res.TotalParticipants)
			assert.Equal(t, len(tc.votes), res.VotedParticipants)
			assert.Equal(t, tc.numeric, res.NumericVoteCount)
			if tc.average == nil {
				assert.Nil(t, res.Average)
				return
			}
			require.NotNil(t, res.Average)
			assert.InDelta(t, *tc.average, *res.Average, 1e-9)
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestComputeRaceRankingOrder(t *testing.T) {
	s := NewState(KindRace, "T1", "r", 10, Rules{}, t0)
	start := t0
	s.Race.StartedAt = &start

	add := func(id string, joined int, progress int, finishMs int, spectator bool) {
		p := NewParticipant(id, "", id, t0.Add(time.Duration(joined)*time.Second))
		p.Progress = progress
		p.Spectator = spectator
		if finishMs > 0 {
			at := start.Add(time.Duration(finishMs) * time.Millisecond)
			p.Finished = true
			p.FinishedAt = &at
		}
		s.Participants[id] = p
	}
	add("slow", 0, 100, 9000, false)
	add("fast", 1, 100, 4000, false)
	add("half", 2, 50, 0, false)
	add("most", 3, 80, 0, false)
	add("tie", 4, 50, 0, false)
	add("watch", 5, 0, 0, true)

	ranking := ComputeRaceRanking(s)
	var ids []string
	for _, e := range ranking {
		ids = append(ids, e.ParticipantID)
	}
	assert.Equal(t, []string{"fast", "slow", "most", "half", "tie"}, ids)
	for i, e := range ranking {
		assert.Equal(t, i+1, e.Rank)
	}
	require.NotNil(t, ranking[0].ElapsedMs)
	assert.Equal(t, int64(4000), *ranking[0].ElapsedMs)
	assert.Nil(t, ranking[2].ElapsedMs)
}

func TestParseVote(t *testing.T) {
	for _, v := range Deck {
		got, err := ParseVote(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := ParseVote("커피")
	assert.ErrorIs(t, err, ErrInvalidVote)
}
