package motivation

import "math"

// Off-topic and engagement thresholds.
const (
	TerminateAfterOffTopic = 5
	offTopicTurnThreshold  = 10
)

// EngagementForDistance maps a topic-graph distance between the client's
// primary topic and the therapist's perceived topic to an engagement level.
func EngagementForDistance(distance float64) int {
	switch {
	case distance == 0:
		return 4
	case distance <= 3:
		return 3
	case distance <= 5:
		return 2
	default:
		return 1
	}
}

// State is the client's mutable behavioral model for one session.
type State struct {
	Stage         Stage   `json:"stage"`
	Engagement    int     `json:"engagement"`
	Receptivity   float64 `json:"receptivity"`
	OffTopicCount int     `json:"offTopicCount"`
}

// NewState starts a session. Engagement begins at the receptivity value
// rounded into the 1..4 range.
func NewState(stage Stage, receptivity float64) State {
	if stage == "" {
		stage = Precontemplation
	}
	engagement := int(math.Round(receptivity))
	if engagement < 1 {
		engagement = 1
	}
	if engagement > 4 {
		engagement = 4
	}
	return State{Stage: stage, Engagement: engagement, Receptivity: receptivity}
}

// TracksTopics reports whether topic engagement is still scored. Scoring stops
// once the client is contemplating change.
func (s State) TracksTopics() bool {
	return s.Stage == Precontemplation || s.Stage == Motivation
}

// ObserveDistance records the engagement for this turn and updates the
// off-topic counter. therapistTurns counts therapist utterances so far,
// including the current one. It returns true when the therapist hit the
// primary topic exactly and the motivation check should run.
func (s *State) ObserveDistance(distance float64, therapistTurns int) bool {
	s.Engagement = EngagementForDistance(distance)
	switch s.Engagement {
	case 4:
		s.OffTopicCount = 0
		return true
	case 3:
		s.OffTopicCount = 0
	case 1:
		if therapistTurns > offTopicTurnThreshold {
			s.OffTopicCount++
		}
	}
	return false
}

// EnterMotivation jumps to Motivation. Only a precontemplating client can
// make the jump.
func (s *State) EnterMotivation() bool {
	if s.Stage != Precontemplation {
		return false
	}
	s.Stage = Motivation
	return true
}

// CompleteMotivation passes through Motivation into Contemplation.
func (s *State) CompleteMotivation() {
	if s.Stage == Motivation {
		s.Stage = Contemplation
	}
}

// ResolveBeliefs moves a contemplating client to Preparation once no beliefs
// remain to contest.
func (s *State) ResolveBeliefs(remaining int) bool {
	if s.Stage != Contemplation || remaining > 0 {
		return false
	}
	s.Stage = Preparation
	return true
}

// ShouldTerminate reports whether the client has been off topic long enough
// to walk out.
func (s State) ShouldTerminate() bool {
	return s.Stage == Precontemplation && s.OffTopicCount >= TerminateAfterOffTopic
}
