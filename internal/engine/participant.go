package engine

import "time"

type Participant struct {
	ID             string
	ConnectionID   string
	DisplayName    string
	RequestedName  string
	JoinedAt       time.Time
	LastActivityAt time.Time
	Connected      bool

	Vote *VoteValue

	CurrentInput string
	Progress     int
	Mismatches   []int
	Finished     bool
	FinishedAt   *time.Time
	Rank         *int
	Spectator    bool
}

func NewParticipant(id, connID, name string, at time.Time) *Participant {
	return &Participant{
		ID:             id,
		ConnectionID:   connID,
		DisplayName:    name,
		RequestedName:  name,
		JoinedAt:       at,
		LastActivityAt: at,
		Connected:      true,
	}
}

func (p *Participant) resetRace() {
	p.CurrentInput = ""
	p.Progress = 0
	p.Mismatches = nil
	p.Finished = false
	p.FinishedAt = nil
	p.Rank = nil
	p.Spectator = false
}
