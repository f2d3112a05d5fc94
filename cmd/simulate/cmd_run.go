package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-counsel/backend/internal/analysis/talk"
	"github.com/zhouzirui/z-counsel/backend/internal/app"
	"github.com/zhouzirui/z-counsel/backend/internal/config"
	"github.com/zhouzirui/z-counsel/backend/internal/model/persona"
	"github.com/zhouzirui/z-counsel/backend/internal/service/agent"
	"github.com/zhouzirui/z-counsel/backend/internal/service/session"
	"github.com/zhouzirui/z-counsel/backend/internal/service/simulation"
	"github.com/zhouzirui/z-counsel/backend/internal/store/transcript"
)

const (
	typeHuman    = "human"
	typeScripted = "scripted"
)

type runOptions struct {
	configPath    string
	clientData    string
	clientID      string
	therapistID   string
	clientType    string
	therapistType string
	maxTurns      int
	outputPath    string
	overwrite     bool
	human         bool
	dryRun        bool
	evaluate      []string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one session and save its transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML simulation config file")
	f.StringVar(&opts.clientData, "client-data", "", "JSON or YAML file with client profiles")
	f.StringVar(&opts.clientID, "client", "", "client persona id (default alex-smoking)")
	f.StringVar(&opts.therapistID, "therapist", "", "therapist persona id (default mi-counselor)")
	f.StringVar(&opts.clientType, "client-type", "", "client agent type override")
	f.StringVar(&opts.therapistType, "therapist-type", "", "therapist agent type override")
	f.IntVar(&opts.maxTurns, "max-turns", 0, "client turn budget override")
	f.StringVar(&opts.outputPath, "output", "", "transcript output file override")
	f.BoolVar(&opts.overwrite, "overwrite", false, "replace the output file instead of appending")
	f.BoolVar(&opts.human, "human", false, "play the therapist yourself from stdin")
	f.BoolVar(&opts.dryRun, "dry-run", false, "use scripted agents instead of the LLM")
	f.StringSliceVar(&opts.evaluate, "evaluate", nil, "dimensions to score after the session")
	return cmd
}

func runSession(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	simCfg := cfg.Simulation
	if opts.configPath != "" {
		if simCfg, err = config.LoadSimulationFile(opts.configPath); err != nil {
			return err
		}
	}
	applyRunFlags(&simCfg, opts)
	if err := simCfg.Validate(); err != nil {
		return err
	}
	cfg.Simulation = simCfg
	if simCfg.ClientDataPath != "" {
		cfg.Data.ClientDataPath = simCfg.ClientDataPath
	}

	out := cmd.OutOrStdout()
	store := transcript.NewFileStore(simCfg.OutputPath, simCfg.Overwrite)
	services, err := app.Build(ctx, cfg, app.Options{
		Registerer: prometheus.NewRegistry(),
		Store:      store,
	})
	if err != nil {
		return err
	}
	defer services.Close()

	registerCLIAgents(services.Agents, cmd)

	req := simulation.Request{
		ClientID:      firstNonEmpty(simCfg.ClientID, "alex-smoking"),
		TherapistID:   firstNonEmpty(simCfg.TherapistID, "mi-counselor"),
		ClientType:    opts.clientType,
		TherapistType: opts.therapistType,
		Evaluate:      opts.evaluate,
	}
	if opts.human {
		req.TherapistType = typeHuman
	}
	if opts.dryRun {
		req.ClientType = typeScripted
		if !opts.human {
			req.TherapistType = typeScripted
		}
	}

	observe := func(e session.Event) {
		switch e.Type {
		case session.EventTurn:
			if !opts.human {
				fmt.Fprintf(out, "%s: %s\n", e.Turn.Role, e.Turn.Content)
			}
		case session.EventReminder:
			fmt.Fprintf(out, "--- %d turns left ---\n", e.TurnsLeft)
		}
	}

	record, err := services.Simulation.Run(ctx, req, observe)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "session %s ended (%s) after %d turns, saved to %s\n",
		record.ID, record.TerminationReason, record.NumTurns, store.Path())
	balance := talk.Summarize(record.Messages)
	fmt.Fprintf(out, "client talk: change=%d sustain=%d neutral=%d\n", balance.Change, balance.Sustain, balance.Neutral)
	for name, result := range record.Evaluation {
		fmt.Fprintf(out, "  %s: %v\n", name, result)
	}
	return nil
}

func applyRunFlags(c *config.SimulationConfig, opts *runOptions) {
	if opts.clientID != "" {
		c.ClientID = opts.clientID
	}
	if opts.therapistID != "" {
		c.TherapistID = opts.therapistID
	}
	if opts.clientData != "" {
		c.ClientDataPath = opts.clientData
	}
	if opts.maxTurns > 0 {
		c.MaxTurns = opts.maxTurns
	}
	if opts.outputPath != "" {
		c.OutputPath = opts.outputPath
	}
	if opts.overwrite {
		c.Overwrite = true
	}
}

// registerCLIAgents adds the terminal-driven and scripted agent types.
func registerCLIAgents(r *agent.Registry, cmd *cobra.Command) {
	r.RegisterTherapist(typeHuman, func(_ context.Context, p persona.TherapistProfile, _ agent.Dependencies) (agent.Agent, error) {
		return agent.NewHumanAgent(firstNonEmpty(p.Name, "Therapist"), cmd.InOrStdin(), cmd.OutOrStdout()), nil
	})
	r.RegisterTherapist(typeScripted, func(_ context.Context, p persona.TherapistProfile, _ agent.Dependencies) (agent.Agent, error) {
		return agent.NewScriptedAgent(p.Name,
			"What brings you here today?",
			"How do you feel about that?",
			"What would make this change worth it for you?",
		), nil
	})
	r.RegisterClient(typeScripted, func(_ context.Context, p persona.ClientProfile, _ agent.Dependencies) (agent.Agent, error) {
		return agent.NewScriptedAgent(p.Name,
			"I'm not sure I need to be here.",
			"It's complicated.",
			"Maybe. I'd have to think about it.",
		), nil
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
