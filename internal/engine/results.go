package engine

import (
	"cmp"
	"math"
	"slices"
	"time"
)

type VoteResult struct {
	TotalParticipants int                  `json:"total_participants"`
	VotedParticipants int                  `json:"voted_participants"`
	Votes             map[string]VoteValue `json:"votes"`
	// Average is nil when no numeric card was played. A mean of 0 is a real value.
	Average          *float64          `json:"average"`
	NumericVoteCount int               `json:"numeric_vote_count"`
	Distribution     map[VoteValue]int `json:"distribution"`
}

type RankEntry struct {
	ParticipantID string     `json:"participant_id"`
	DisplayName   string     `json:"display_name"`
	Rank          int        `json:"rank"`
	Finished      bool       `json:"finished"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	ElapsedMs     *int64     `json:"elapsed_ms,omitempty"`
	Progress      int        `json:"progress"`
}

type RoundResult struct {
	RoundNumber int         `json:"round_number"`
	SentenceID  string      `json:"sentence_id"`
	Rankings    []RankEntry `json:"rankings"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	EndedAt     time.Time   `json:"ended_at"`
}

func ComputeVoteResult(s *State) VoteResult {
	res := VoteResult{
		TotalParticipants: len(s.Participants),
		Votes:             map[string]VoteValue{},
		Distribution:      map[VoteValue]int{},
	}
	var sum float64
	for id, p := range s.Participants {
		if p.Vote == nil {
			continue
		}
		v := *p.Vote
		res.VotedParticipants++
		res.Votes[id] = v
		res.Distribution[v]++
		if f, ok := v.Numeric(); ok {
			sum += f
			res.NumericVoteCount++
		}
	}
	if res.NumericVoteCount > 0 {
		avg := math.Round(sum/float64(res.NumericVoteCount)*100) / 100
		res.Average = &avg
	}
	return res
}

// ComputeRaceRanking orders finishers by finish time, then everyone else by
// progress. Spectators are not ranked.
func ComputeRaceRanking(s *State) []RankEntry {
	var finished, racing []*Participant
	for _, p := range s.Participants {
		switch {
		case p.Spectator:
		case p.Finished && p.FinishedAt != nil:
			finished = append(finished, p)
		default:
			racing = append(racing, p)
		}
	}

	slices.SortFunc(finished, func(a, b *Participant) int {
		if c := a.FinishedAt.Compare(*b.FinishedAt); c != 0 {
			return c
		}
		return compareJoin(a, b)
	})
	slices.SortFunc(racing, func(a, b *Participant) int {
		if c := cmp.Compare(b.Progress, a.Progress); c != 0 {
			return c
		}
		return compareJoin(a, b)
	})

	out := make([]RankEntry, 0, len(finished)+len(racing))
	for _, p := range finished {
		e := entryFor(p, len(out)+1)
		e.FinishedAt = p.FinishedAt
		ms := elapsedMs(s, *p.FinishedAt)
		e.ElapsedMs = &ms
		out = append(out, e)
	}
	for _, p := range racing {
		out = append(out, entryFor(p, len(out)+1))
	}
	return out
}

func entryFor(p *Participant, rank int) RankEntry {
	return RankEntry{
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		Rank:          rank,
		Finished:      p.Finished,
		Progress:      p.Progress,
	}
}
