// Package simulation wires personas, agents, the session controller and the
// transcript store into the operations exposed over HTTP and the CLI.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zhouzirui/z-counsel/backend/internal/analysis/talk"
	"github.com/zhouzirui/z-counsel/backend/internal/config"
	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/service/evaluation"
	"github.com/zhouzirui/z-counsel/backend/internal/service/session"
	"github.com/zhouzirui/z-counsel/backend/internal/store/transcript"
)

var (
	ErrInvalidRequest     = errors.New("invalid simulation request")
	ErrEvaluationDisabled = errors.New("evaluation is not configured")
)

var validate = validator.New()

// Request describes one simulation run. Zero turn values fall back to the
// service defaults.
type Request struct {
	ClientID        string   `json:"clientId" validate:"required"`
	TherapistID     string   `json:"therapistId" validate:"required"`
	ClientType      string   `json:"clientType,omitempty" validate:"omitempty,max=32"`
	TherapistType   string   `json:"therapistType,omitempty" validate:"omitempty,max=32"`
	MaxTurns        int      `json:"maxTurns,omitempty" validate:"gte=0,lte=200"`
	ReminderTurnNum *int     `json:"reminderTurnNum,omitempty" validate:"omitempty,gte=0"`
	Evaluate        []string `json:"evaluate,omitempty"`
}

// Validate reports the first failing field wrapped in ErrInvalidRequest.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %s", ErrInvalidRequest, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Service runs and inspects simulated sessions.
type Service struct {
	personas   persona.Store
	agents     *agent.Registry
	controller *session.Controller
	store      transcript.Store
	evaluator  *evaluation.Evaluator
	defaults   config.SimulationConfig
}

// NewService assembles a Service. The controller should save into store so
// that runs are visible to Get and List. evaluator may be nil.
func NewService(personas persona.Store, agents *agent.Registry, controller *session.Controller, store transcript.Store, evaluator *evaluation.Evaluator, defaults config.SimulationConfig) *Service {
	return &Service{
		personas:   personas,
		agents:     agents,
		controller: controller,
		store:      store,
		evaluator:  evaluator,
		defaults:   defaults,
	}
}

func (s *Service) Personas() persona.Store {
	return s.personas
}

// Run builds both agents and drives one session. When req.Evaluate is set the
// saved transcript is scored afterwards.
func (s *Service) Run(ctx context.Context, req Request, observe session.Observer) (chat.Transcript, error) {
	if err := req.Validate(); err != nil {
		return chat.Transcript{}, err
	}

	clientProfile, ok := s.personas.FindClient(req.ClientID)
	if !ok {
		return chat.Transcript{}, fmt.Errorf("%w: client %s", persona.ErrPersonaNotFound, req.ClientID)
	}
	therapistProfile, ok := s.personas.FindTherapist(req.TherapistID)
	if !ok {
		return chat.Transcript{}, fmt.Errorf("%w: therapist %s", persona.ErrPersonaNotFound, req.TherapistID)
	}
	if t := strings.TrimSpace(req.ClientType); t != "" {
		clientProfile.AgentType = t
	}
	if t := strings.TrimSpace(req.TherapistType); t != "" {
		therapistProfile.AgentType = t
	}

	client, err := s.agents.NewClient(ctx, clientProfile)
	if err != nil {
		return chat.Transcript{}, fmt.Errorf("build client: %w", err)
	}
	therapist, err := s.agents.NewTherapist(ctx, therapistProfile)
	if err != nil {
		return chat.Transcript{}, fmt.Errorf("build therapist: %w", err)
	}

	cfg := session.Config{
		MaxTurns:        s.defaults.MaxTurns,
		ReminderTurnNum: s.defaults.ReminderTurnNum,
		Profile:         clientProfile,
	}
	if req.MaxTurns > 0 {
		cfg.MaxTurns = req.MaxTurns
	}
	if req.ReminderTurnNum != nil {
		cfg.ReminderTurnNum = *req.ReminderTurnNum
	}

	log.Printf("[simulation] start client=%s(%s) therapist=%s max_turns=%d", clientProfile.ID, clientProfile.AgentType, therapistProfile.ID, cfg.MaxTurns)
	record, err := s.controller.Run(ctx, therapist, client, cfg, observe)
	if err != nil {
		return record, err
	}
	balance := talk.Summarize(record.Messages)
	log.Printf("[simulation] session=%s change_talk=%d sustain_talk=%d trend=%.2f", record.ID, balance.Change, balance.Sustain, balance.Trend)

	if len(req.Evaluate) > 0 {
		return s.evaluate(ctx, record, req.Evaluate)
	}
	return record, nil
}

// Get returns a stored transcript.
func (s *Service) Get(ctx context.Context, id string) (chat.Transcript, error) {
	return s.store.Get(ctx, id)
}

// List returns stored transcript summaries, newest first.
func (s *Service) List(ctx context.Context) ([]transcript.Summary, error) {
	return s.store.List(ctx)
}

// Talk summarizes change and sustain talk in a stored transcript.
func (s *Service) Talk(ctx context.Context, id string) (talk.Balance, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return talk.Balance{}, err
	}
	return talk.Summarize(record.Messages), nil
}

// Evaluate scores a stored transcript and saves the scores with it.
func (s *Service) Evaluate(ctx context.Context, id string, dimensions []string) (chat.Transcript, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return chat.Transcript{}, err
	}
	return s.evaluate(ctx, record, dimensions)
}

func (s *Service) evaluate(ctx context.Context, record chat.Transcript, dimensions []string) (chat.Transcript, error) {
	if s.evaluator == nil {
		return record, ErrEvaluationDisabled
	}
	results, err := s.evaluator.Evaluate(ctx, record, dimensions)
	if err != nil {
		return record, err
	}
	evaluation.Attach(&record, results)
	if err := s.store.Save(ctx, record); err != nil {
		return record, fmt.Errorf("save evaluation: %w", err)
	}
	return record, nil
}
