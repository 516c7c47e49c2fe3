package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/app"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
)

func generateCmd() *cobra.Command {
	var preview bool
	cmd := &cobra.Command{
		Use:   "generate [event.json|-]",
		Short: "Generate a follow-up note for one visitor event",
		Long: `Generate a follow-up note for one visitor event read from a JSON file
(or stdin with "-") and print the result as JSON.

Examples:
  followup generate event.json
  cat event.json | followup generate - --preview`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := readEvent(args[0])
			if err != nil {
				return err
			}
			tenant, err := domain.NewTenantRef(ev.Tenant)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var out any
			if preview {
				out, err = a.Services.Notes.Preview(cmd.Context(), ev, tenant)
			} else {
				out, err = a.Services.Notes.Generate(dbctx.New(cmd.Context()), ev, tenant)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "generate without storing the note")
	return cmd
}

func readEvent(path string) (domain.InboundEvent, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return domain.InboundEvent{}, fmt.Errorf("open event: %w", err)
		}
		defer f.Close()
		r = f
	}
	var ev domain.InboundEvent
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return domain.InboundEvent{}, fmt.Errorf("decode event: %w", err)
	}
	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return domain.InboundEvent{}, err
	}
	return ev, nil
}
