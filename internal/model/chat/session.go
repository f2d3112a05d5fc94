package chat

import (
	"errors"
	"time"
)

// TerminationReason records why a session stopped.
type TerminationReason string

const (
	ReasonNone        TerminationReason = ""
	ReasonTurnLimit   TerminationReason = "turn-limit"
	ReasonExplicitEnd TerminationReason = "explicit-end"
)

// ErrSessionEnded is returned when appending to a finished session.
var ErrSessionEnded = errors.New("session has ended")

// Session is one simulated therapy session. It is owned by the controller
// that runs it.
type Session struct {
	ID              string            `json:"id"`
	TherapistName   string            `json:"therapistName"`
	ClientName      string            `json:"clientName"`
	Turns           []Turn            `json:"turns"`
	TurnsTaken      int               `json:"turnsTaken"`
	MaxTurns        int               `json:"maxTurns"`
	ReminderTurnNum int               `json:"reminderTurnNum"`
	Reason          TerminationReason `json:"terminationReason,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// turnsHint caps the preallocated turn capacity.
const turnsHint = 32

// NewSession creates an empty session with the given turn budget.
func NewSession(id string, maxTurns, reminderTurnNum int) *Session {
	return &Session{
		ID:              id,
		Turns:           make([]Turn, 0, 2*max(min(maxTurns, turnsHint), 0)),
		MaxTurns:        maxTurns,
		ReminderTurnNum: reminderTurnNum,
		CreatedAt:       time.Now().UTC(),
	}
}

// Ended reports whether a termination reason has been set.
func (s *Session) Ended() bool {
	return s.Reason != ReasonNone
}

// Append adds a turn. Client turns advance TurnsTaken by one.
func (s *Session) Append(turn Turn) error {
	if s.Ended() {
		return ErrSessionEnded
	}
	s.Turns = append(s.Turns, turn)
	if turn.Role == RoleClient {
		s.TurnsTaken++
	}
	return nil
}

// DropLast removes the most recent turn if it was spoken by role. It is used
// to discard a therapist's terminating utterance and never touches TurnsTaken.
func (s *Session) DropLast(role Role) {
	if s.Ended() || len(s.Turns) == 0 {
		return
	}
	if s.Turns[len(s.Turns)-1].Role != role {
		return
	}
	s.Turns = s.Turns[:len(s.Turns)-1]
}

// TurnsLeft is the remaining client-turn budget.
func (s *Session) TurnsLeft() int {
	return s.MaxTurns - s.TurnsTaken
}

// End finalizes the session. Only the first reason sticks.
func (s *Session) End(reason TerminationReason) {
	if s.Ended() {
		return
	}
	s.Reason = reason
}

// Transcript is the persisted record of a finished session.
type Transcript struct {
	ID                string            `json:"id"`
	Profile           any               `json:"profile"`
	Messages          []Turn            `json:"messages"`
	NumTurns          int               `json:"num_turns"`
	TerminationReason TerminationReason `json:"termination_reason,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	Evaluation        map[string]any    `json:"evaluation,omitempty"`
}

// Transcript snapshots the session into a persistable record.
func (s *Session) Transcript(profile any) Transcript {
	messages := make([]Turn, len(s.Turns))
	copy(messages, s.Turns)
	return Transcript{
		ID:                s.ID,
		Profile:           profile,
		Messages:          messages,
		NumTurns:          s.TurnsTaken,
		TerminationReason: s.Reason,
		CreatedAt:         s.CreatedAt,
	}
}
