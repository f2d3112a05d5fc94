// Package app assembles the services shared by the HTTP server and the
// simulation CLI from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zhouzirui/z-counsel/backend/internal/analysis/topic"
	"github.com/zhouzirui/z-counsel/backend/internal/config"
	"github.com/zhouzirui/z-counsel/backend/internal/metrics"
	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/service/ai"
	"github.com/zhouzirui/z-counsel/backend/internal/service/evaluation"
	"github.com/zhouzirui/z-counsel/backend/internal/service/session"
	"github.com/zhouzirui/z-counsel/backend/internal/service/simulation"
	"github.com/zhouzirui/z-counsel/backend/internal/store/transcript"
)

// ErrAIUnavailable is returned by LLM-backed agents when no chat model is configured.
var ErrAIUnavailable = errors.New("ai generation is not configured")

// App holds the wired services.
type App struct {
	Config     *config.Config
	Personas   *persona.MemoryStore
	Graph      *topic.Graph
	Generator  ai.Generator
	Agents     *agent.Registry
	Store      transcript.Store
	Evaluator  *evaluation.Evaluator
	Controller *session.Controller
	Simulation *simulation.Service
	Metrics    *metrics.SimulationMetrics

	closers []io.Closer
}

// Options adjust Build for tests and the CLI.
type Options struct {
	// Registerer receives the metrics; nil means the default registerer.
	Registerer prometheus.Registerer
	// Generator replaces the configured chat model.
	Generator ai.Generator
	// Store replaces the configured transcript store.
	Store transcript.Store
}

// Build wires every service from cfg.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}
	a.Metrics = metrics.NewSimulationMetrics(opts.Registerer)

	gen, err := buildGenerator(ctx, cfg.AI, opts.Generator)
	if err != nil {
		return nil, err
	}
	a.Generator = gen

	clients, therapists := persona.Seed()
	if path := cfg.Data.ClientDataPath; path != "" {
		loaded, err := persona.LoadClients(path)
		if err != nil {
			return nil, err
		}
		clients = append(clients, loaded...)
		log.Printf("[app] loaded %d client profiles from %s", len(loaded), path)
	}
	a.Personas = persona.NewMemoryStore(clients, therapists)

	a.Graph = topic.DefaultGraph()
	if path := cfg.Data.TopicGraphPath; path != "" {
		if a.Graph, err = topic.LoadGraphJSON(path); err != nil {
			return nil, err
		}
	}

	deps := agent.Dependencies{
		Generator: gen,
		Graph:     a.Graph,
		Metrics:   a.Metrics,
	}
	if cfg.Embedding.Enabled() {
		deps.Scorer = topic.NewEmbeddingScorer(cfg.Embedding.NewClient(), cfg.Embedding.Model)
		log.Printf("[app] topic relevance uses embeddings model=%s", cfg.Embedding.Model)
	}
	if path := cfg.Data.TopicContentPath; path != "" {
		if deps.TopicContent, err = topic.LoadContent(path); err != nil {
			return nil, err
		}
	}
	a.Agents = agent.NewRegistry(deps)

	if opts.Store != nil {
		a.Store = opts.Store
	} else if a.Store, err = a.buildStore(cfg.Storage); err != nil {
		a.Close()
		return nil, err
	}

	bundle, err := ai.DefaultPrompts().Bundle("evaluator")
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Evaluator = evaluation.NewEvaluator(gen, bundle, a.Metrics)
	a.Controller = session.NewController(a.Store,
		session.WithMetrics(a.Metrics),
		session.WithCallTimeout(cfg.Simulation.CallTimeout),
	)
	a.Simulation = simulation.NewService(a.Personas, a.Agents, a.Controller, a.Store, a.Evaluator, cfg.Simulation)
	return a, nil
}

// Close releases database handles.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildStore(cfg config.StorageConfig) (transcript.Store, error) {
	var primary transcript.Store = transcript.NewMemoryStore()
	if cfg.DBPath != "" {
		db, err := transcript.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		primary = db
		log.Printf("[store] transcripts persisted to %s", cfg.DBPath)
	}
	if cfg.TranscriptDir == "" {
		return primary, nil
	}
	mirror := transcript.NewFileStore(filepath.Join(cfg.TranscriptDir, "transcripts.json"), false)
	log.Printf("[store] mirroring transcripts to %s", mirror.Path())
	return transcript.NewTee(primary, mirror), nil
}

func buildGenerator(ctx context.Context, cfg config.AIConfig, override ai.Generator) (ai.Generator, error) {
	if override != nil {
		return override, nil
	}
	if !cfg.Enabled() {
		log.Println("[app] Ark 凭证未配置，LLM 驱动的 agent 将不可用")
		return unavailableGenerator(), nil
	}
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	gen, err := ai.NewLLMGenerator(ctx, chatModel)
	if err != nil {
		return nil, err
	}
	return gen, nil
}

func unavailableGenerator() ai.Generator {
	return ai.GeneratorFunc(func(context.Context, []*schema.Message, ai.Schema) error {
		return ErrAIUnavailable
	})
}
