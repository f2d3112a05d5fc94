package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-counsel/backend/internal/app"
	"github.com/zhouzirui/z-counsel/backend/internal/config"
	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
	"github.com/zhouzirui/z-counsel/backend/internal/service/evaluation"
	"github.com/zhouzirui/z-counsel/backend/internal/store/transcript"
)

func newEvaluateCmd() *cobra.Command {
	var (
		transcriptPath string
		id             string
		dimensions     []string
		outputPath     string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score saved transcripts on rubric dimensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if transcriptPath == "" {
				return errors.New("--transcript is required")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			services, err := app.Build(ctx, cfg, app.Options{
				Registerer: prometheus.NewRegistry(),
				Store:      transcript.NewMemoryStore(),
			})
			if err != nil {
				return err
			}
			defer services.Close()

			records, err := selectTranscripts(ctx, transcript.NewFileStore(transcriptPath, false), id)
			if err != nil {
				return err
			}
			return evaluateAll(ctx, cmd, services.Evaluator, records, dimensions, outputPath)
		},
	}

	f := cmd.Flags()
	f.StringVar(&transcriptPath, "transcript", "", "transcript JSON file written by run")
	f.StringVar(&id, "id", "", "only score the transcript with this id")
	f.StringSliceVar(&dimensions, "dimensions", nil, "dimensions to score (default all)")
	f.StringVar(&outputPath, "output", "", "append scored transcripts to this file")
	return cmd
}

func selectTranscripts(ctx context.Context, store *transcript.FileStore, id string) ([]chat.Transcript, error) {
	if id != "" {
		t, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return []chat.Transcript{t}, nil
	}
	all, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", transcript.ErrTranscriptNotFound, store.Path())
	}
	return all, nil
}

func evaluateAll(ctx context.Context, cmd *cobra.Command, ev *evaluation.Evaluator, records []chat.Transcript, dimensions []string, outputPath string) error {
	var sink *transcript.FileStore
	if outputPath != "" {
		sink = transcript.NewFileStore(outputPath, false)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, record := range records {
		results, err := ev.Evaluate(ctx, record, dimensions)
		if err != nil {
			return fmt.Errorf("transcript %s: %w", record.ID, err)
		}
		evaluation.Attach(&record, results)
		if err := enc.Encode(map[string]any{"id": record.ID, "evaluation": results}); err != nil {
			return err
		}
		if sink != nil {
			if err := sink.Save(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}
