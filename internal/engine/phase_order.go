package engine

import "fmt"

// Legal phase steps per room kind. Self-steps are listed explicitly where a
// command may re-enter the phase it is already in.
var phaseOrder = map[Kind]map[Phase][]Phase{
	KindVoting: {
		PhaseSelecting: {PhaseSelecting, PhaseRevealed},
		PhaseRevealed:  {PhaseSelecting},
	},
	KindRace: {
		PhaseWaiting:   {PhaseCountdown},
		PhaseCountdown: {PhaseRacing},
		PhaseRacing:    {PhaseRoundEnd},
		PhaseRoundEnd:  {PhaseWaiting},
	},
}

func canTransition(kind Kind, from, to Phase) bool {
	for _, p := range phaseOrder[kind][from] {
		if p == to {
			return true
		}
	}
	return false
}

// setPhase moves s to phase to, refusing any step the table does not list.
func setPhase(s *State, to Phase) error {
	if !canTransition(s.Kind, s.Phase, to) {
		return fmt.Errorf("%w: %s to %s", ErrWrongPhase, s.Phase, to)
	}
	s.Phase = to
	return nil
}

func InitialPhase(kind Kind) Phase {
	if kind == KindRace {
		return PhaseWaiting
	}
	return PhaseSelecting
}
