package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run and score simulated counseling sessions",
		Long: `simulate drives an LLM therapist and an LLM client through a bounded
session, writes the transcript as JSON and can score transcripts afterwards.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				log.Printf("warning: failed to load .env file: %v", err)
			}
		},
	}

	rootCmd.AddCommand(newRunCmd(), newDistanceCmd(), newEvaluateCmd())
	return rootCmd
}
