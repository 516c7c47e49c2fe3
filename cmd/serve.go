package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/app"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and any enabled background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if v := os.Getenv("SERVICE_VERSION"); v == "" {
				_ = os.Setenv("SERVICE_VERSION", Version)
			}
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
}

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume the intake stream and run the Temporal follow-up worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.RunWorker(cmd.Context())
		},
	}
}
