package engine

import "strconv"

type VoteValue string

const (
	Vote0       VoteValue = "0"
	VoteHalf    VoteValue = "1/2"
	Vote1       VoteValue = "1"
	Vote2       VoteValue = "2"
	Vote3       VoteValue = "3"
	Vote5       VoteValue = "5"
	Vote8       VoteValue = "8"
	Vote13      VoteValue = "13"
	Vote20      VoteValue = "20"
	Vote40      VoteValue = "40"
	Vote60      VoteValue = "60"
	Vote100     VoteValue = "100"
	VoteUnknown VoteValue = "?"
	VoteCoffee  VoteValue = "coffee"
)

// Deck is the closed set of cards, in display order.
var Deck = []VoteValue{
	Vote0, VoteHalf, Vote1, Vote2, Vote3, Vote5, Vote8,
	Vote13, Vote20, Vote40, Vote60, Vote100, VoteUnknown, VoteCoffee,
}

func ParseVote(raw string) (VoteValue, error) {
	for _, v := range Deck {
		if string(v) == raw {
			return v, nil
		}
	}
	return "", ErrInvalidVote
}

// Numeric reports the card's value; ? and coffee have none.
func (v VoteValue) Numeric() (float64, bool) {
	switch v {
	case VoteHalf:
		return 0.5, true
	case VoteUnknown, VoteCoffee:
		return 0, false
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
