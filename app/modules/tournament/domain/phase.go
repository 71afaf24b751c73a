package tournamentdomain

// Phase is the session state driven by the orchestrator around the engine.
type Phase string

const (
	PhaseWaitingForField   Phase = "waiting_for_field"
	PhaseRoundActive       Phase = "round_active"
	PhasePlaying           Phase = "playing"
	PhaseScoring           Phase = "scoring"
	PhaseEliminationReview Phase = "elimination_review"
	PhaseFinished          Phase = "finished"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseWaitingForField:   {PhaseRoundActive},
	PhaseRoundActive:       {PhasePlaying},
	PhasePlaying:           {PhaseScoring},
	PhaseScoring:           {PhaseEliminationReview, PhaseFinished},
	PhaseEliminationReview: {PhaseRoundActive},
}

// CanTransition reports whether a session may move from one phase to another.
func CanTransition(from, to Phase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
