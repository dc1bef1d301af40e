package dispatch

import "tradedeck-console/internal/models"

// Intent is an operator control intent.
type Intent string

const (
	IntentPause  Intent = "pause"
	IntentResume Intent = "resume"
	IntentStop   Intent = "stop"
	IntentStart  Intent = "start"
	IntentKill   Intent = "kill"
)

// operatorTransitions lists the status transitions an operator may
// initiate. The error status itself is backend-owned: a crash enters it and
// an auto-restart leaves it; the console only ever requests a way out
// (resume from error performs an implicit restart).
var operatorTransitions = map[models.StrategyStatus][]models.StrategyStatus{
	models.StatusRunning: {models.StatusPaused, models.StatusStopped},
	models.StatusPaused:  {models.StatusRunning, models.StatusStopped},
	models.StatusError:   {models.StatusRunning},
	models.StatusStopped: {models.StatusRunning},
}

// intentTarget maps a per-strategy intent to the status it requests.
var intentTarget = map[Intent]models.StrategyStatus{
	IntentPause:  models.StatusPaused,
	IntentResume: models.StatusRunning,
	IntentStop:   models.StatusStopped,
	IntentStart:  models.StatusRunning,
}

// CanTransition reports whether an operator may move a strategy between the
// two statuses.
func CanTransition(from, to models.StrategyStatus) bool {
	for _, allowed := range operatorTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanApply reports whether the intent is valid for a strategy currently in
// the given status.
func CanApply(intent Intent, from models.StrategyStatus) bool {
	target, ok := intentTarget[intent]
	if !ok {
		return false
	}
	return CanTransition(from, target)
}

// RequiresConfirmation reports whether the intent is destructive enough to
// demand an explicit operator confirmation before any transport call.
func RequiresConfirmation(intent Intent) bool {
	switch intent {
	case IntentPause, IntentStop, IntentKill:
		return true
	default:
		return false
	}
}
