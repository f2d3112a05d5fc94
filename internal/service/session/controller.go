// Package session drives a therapist and a client through one bounded
// session and persists the transcript once it ends.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/z-counsel/backend/internal/config"
	"github.com/zhouzirui/z-counsel/backend/internal/metrics"
	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/store/transcript"
)

// Config is the per-run turn budget.
type Config struct {
	SessionID       string
	MaxTurns        int
	ReminderTurnNum int
	// Profile is stored with the transcript as the persona reference.
	Profile any
}

// Validate checks the turn budget.
func (c Config) Validate() error {
	if c.MaxTurns <= 0 {
		return fmt.Errorf("%w: max turns must be positive, got %d", config.ErrInvalidConfig, c.MaxTurns)
	}
	if c.ReminderTurnNum < 0 {
		return fmt.Errorf("%w: reminder turn num must not be negative, got %d", config.ErrInvalidConfig, c.ReminderTurnNum)
	}
	return nil
}

// EventType labels controller events.
type EventType string

const (
	EventTurn     EventType = "turn"
	EventReminder EventType = "reminder"
	EventEnd      EventType = "end"
)

// Event is what observers receive while a session runs.
type Event struct {
	Type       EventType              `json:"type"`
	SessionID  string                 `json:"sessionId"`
	Turn       *chat.Turn             `json:"turn,omitempty"`
	TurnsTaken int                    `json:"turnsTaken"`
	TurnsLeft  int                    `json:"turnsLeft"`
	Reason     chat.TerminationReason `json:"reason,omitempty"`
	Transcript *chat.Transcript       `json:"transcript,omitempty"`
}

// Observer is called synchronously for every event.
type Observer func(Event)

// Controller runs sessions. It holds no per-session state, so one controller
// can run many sessions.
type Controller struct {
	store       transcript.Saver
	metrics     *metrics.SimulationMetrics
	callTimeout time.Duration
}

// Option customizes a Controller.
type Option func(*Controller)

// WithMetrics records turns, latencies and terminations.
func WithMetrics(m *metrics.SimulationMetrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithCallTimeout bounds each agent reply.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) { c.callTimeout = d }
}

func NewController(store transcript.Saver, opts ...Option) *Controller {
	c := &Controller{store: store}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var endTokens = map[string]struct{}{"end": {}, "exit": {}}

// IsEndToken reports whether a therapist utterance, after removing the
// therapist's name prefix, asks to end the session.
func IsEndToken(utterance, therapistName string) bool {
	_, ok := endTokens[strings.ToLower(chat.StripSpeaker(utterance, therapistName))]
	return ok
}

// OpeningMessage is the moderator line the therapist receives first.
func OpeningMessage(therapistName string) string {
	return fmt.Sprintf("[Moderator] You may start the session now, %s.", therapistName)
}

// ReminderNotice is appended to the client's reply when few turns remain.
func ReminderNotice(turnsLeft int) string {
	return fmt.Sprintf("\nModerator: You have %d turns left in the session. Try to wrap up the conversation.", turnsLeft)
}

// Run alternates therapist and client turns until the therapist ends the
// session or the client-turn budget is spent, then saves the transcript.
// An agent error aborts the run and nothing is saved.
func (c *Controller) Run(ctx context.Context, therapist, client agent.Agent, cfg Config, observe Observer) (chat.Transcript, error) {
	if err := cfg.Validate(); err != nil {
		return chat.Transcript{}, err
	}
	if observe == nil {
		observe = func(Event) {}
	}
	id := cfg.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	sess := chat.NewSession(id, cfg.MaxTurns, cfg.ReminderTurnNum)
	sess.TherapistName = therapist.Name()
	sess.ClientName = client.Name()
	therapist.SetCounterpart(client.Name())
	client.SetCounterpart(therapist.Name())

	msg := OpeningMessage(therapist.Name())
	for !sess.Ended() {
		if err := ctx.Err(); err != nil {
			return chat.Transcript{}, err
		}
		log.Printf("[session] id=%s turn %d/%d", id, sess.TurnsTaken+1, cfg.MaxTurns)

		utterance, err := c.reply(ctx, therapist, chat.RoleTherapist, msg)
		if err != nil {
			return chat.Transcript{}, fmt.Errorf("therapist turn %d: %w", sess.TurnsTaken+1, err)
		}
		if err := sess.Append(chat.Turn{Role: chat.RoleTherapist, Content: utterance}); err != nil {
			return chat.Transcript{}, err
		}
		if IsEndToken(utterance, therapist.Name()) {
			sess.DropLast(chat.RoleTherapist)
			sess.End(chat.ReasonExplicitEnd)
			break
		}
		c.emitTurn(observe, sess)

		// Agents hear the bare utterance; speakers are known through SetCounterpart.
		reply, err := c.reply(ctx, client, chat.RoleClient, utterance)
		if err != nil {
			return chat.Transcript{}, fmt.Errorf("client turn %d: %w", sess.TurnsTaken+1, err)
		}
		if err := sess.Append(chat.Turn{Role: chat.RoleClient, Content: reply}); err != nil {
			return chat.Transcript{}, err
		}
		c.metrics.ObserveClientTurn()
		c.emitTurn(observe, sess)

		if sess.TurnsTaken >= cfg.MaxTurns {
			sess.End(chat.ReasonTurnLimit)
			break
		}

		msg = reply
		if left := sess.TurnsLeft(); left > 0 && left <= cfg.ReminderTurnNum {
			msg += ReminderNotice(left)
			observe(Event{Type: EventReminder, SessionID: id, TurnsTaken: sess.TurnsTaken, TurnsLeft: left})
		}
	}

	record := sess.Transcript(cfg.Profile)
	if c.store != nil {
		if err := c.store.Save(ctx, record); err != nil {
			return record, fmt.Errorf("save transcript: %w", err)
		}
	}

	log.Printf("[session] id=%s ended reason=%s turns=%d", id, record.TerminationReason, record.NumTurns)
	c.metrics.ObserveSession(string(record.TerminationReason))
	observe(Event{
		Type:       EventEnd,
		SessionID:  id,
		TurnsTaken: record.NumTurns,
		Reason:     record.TerminationReason,
		Transcript: &record,
	})
	return record, nil
}

func (c *Controller) reply(ctx context.Context, a agent.Agent, role chat.Role, msg string) (string, error) {
	callCtx := ctx
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := a.GenerateResponse(callCtx, msg)
	c.metrics.ObserveGeneration(string(role), time.Since(start))
	return out, err
}

func (c *Controller) emitTurn(observe Observer, sess *chat.Session) {
	turn := sess.Turns[len(sess.Turns)-1]
	observe(Event{
		Type:       EventTurn,
		SessionID:  sess.ID,
		Turn:       &turn,
		TurnsTaken: sess.TurnsTaken,
		TurnsLeft:  sess.TurnsLeft(),
	})
}
