package engine

import (
	"math"
	"slices"
	"unicode/utf8"
)

func DefaultRules(kind Kind) Rules {
	if kind == KindRace {
		return Rules{
			StartCountdownSec: 3,
			FinishGraceSec:    5,
			NextRoundDelaySec: 3,
			PasteThreshold:    10,
			MinRacers:         1,
		}
	}
	return Rules{RevealCountdownSec: 3}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func FindEvent(events []Event, eventType EventType) (Event, bool) {
	for _, event := range events {
		if event.Type == eventType {
			return event, true
		}
	}
	return Event{}, false
}

// MeasureProgress compares input with target rune by rune. Progress is the
// share of correctly typed runes, capped at 100; mismatches holds the rune
// offsets that differ, including input typed past the end of target.
func MeasureProgress(input, target string) (int, []int) {
	want := []rune(target)
	if len(want) == 0 {
		return 0, nil
	}
	correct := 0
	var mismatches []int
	i := 0
	for _, r := range input {
		if i < len(want) && r == want[i] {
			correct++
		} else {
			mismatches = append(mismatches, i)
		}
		i++
	}
	progress := int(math.Round(float64(correct) / float64(len(want)) * 100))
	if progress > 100 {
		progress = 100
	}
	return progress, mismatches
}

func RuneLen(s string) int { return utf8.RuneCountInString(s) }

func compareJoin(a, b *Participant) int {
	if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
		return c
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}

func sortByJoin(ps []*Participant) {
	slices.SortFunc(ps, compareJoin)
}
