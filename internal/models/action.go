package models

import "strings"

// Action is a requested vacuum transition.
type Action string

const (
	ActionStart     Action = "START"
	ActionStop      Action = "STOP"
	ActionDischarge Action = "DISCHARGE"
)

// TransitionRule pairs an action with the status it requires and the
// status it produces.
type TransitionRule struct {
	Required  Status
	Resulting Status
}

// transitionRules is fixed for the process lifetime.
var transitionRules = map[Action]TransitionRule{
	ActionStart:     {Required: StatusStopped, Resulting: StatusRunning},
	ActionStop:      {Required: StatusRunning, Resulting: StatusStopped},
	ActionDischarge: {Required: StatusStopped, Resulting: StatusDischarging},
}

// RuleFor returns the transition rule for the action. The second return
// is false for an unknown action.
func RuleFor(a Action) (TransitionRule, bool) {
	r, ok := transitionRules[a]
	return r, ok
}

// ParseAction normalizes user input ("start", " Stop ") into an Action.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := transitionRules[a]
	return a, ok
}
