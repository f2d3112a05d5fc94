// Package motivation holds the deterministic parts of the motivational
// interviewing client model: stages, actions, weighted action menus and the
// per-turn engagement bookkeeping.
package motivation

import "strings"

// Stage is the client's motivational-interviewing phase.
type Stage string

const (
	Precontemplation Stage = "Precontemplation"
	Motivation       Stage = "Motivation"
	Contemplation    Stage = "Contemplation"
	Preparation      Stage = "Preparation"
)

// ParseStage maps a case-insensitive name to a Stage.
func ParseStage(raw string) (Stage, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "precontemplation":
		return Precontemplation, true
	case "motivation":
		return Motivation, true
	case "contemplation":
		return Contemplation, true
	case "preparation":
		return Preparation, true
	default:
		return "", false
	}
}

// Action is the one-word behavioral intent for the client's next utterance.
type Action string

const (
	Deny        Action = "Deny"
	Downplay    Action = "Downplay"
	Blame       Action = "Blame"
	Inform      Action = "Inform"
	Engage      Action = "Engage"
	Hesitate    Action = "Hesitate"
	Doubt       Action = "Doubt"
	Acknowledge Action = "Acknowledge"
	Reject      Action = "Reject"
	Accept      Action = "Accept"
	Plan        Action = "Plan"
	Terminate   Action = "Terminate"
)

// Menu lists the actions available in a stage, in distribution order.
func Menu(stage Stage) []Action {
	switch stage {
	case Precontemplation:
		return []Action{Deny, Downplay, Blame, Inform, Engage}
	case Contemplation:
		return []Action{Inform, Engage, Hesitate, Doubt, Acknowledge}
	case Preparation:
		return []Action{Inform, Engage, Reject, Accept, Plan}
	case Motivation:
		return []Action{Acknowledge}
	default:
		return nil
	}
}

// NeedsInformation reports whether an action is backed by a persona fact or belief.
func NeedsInformation(action Action) bool {
	switch action {
	case Inform, Downplay, Blame, Hesitate:
		return true
	default:
		return false
	}
}
