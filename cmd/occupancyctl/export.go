package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/comalice/occupancyx"
	"github.com/comalice/occupancyx/internal/production"
)

func exportCmd() *cobra.Command {
	var configPath, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the initial (all-vacant) snapshot for a hierarchy as JSON",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runExport(configPath, out)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the location hierarchy config (YAML or JSON)")
	cmd.Flags().StringVar(&out, "out", "", "write to this file instead of stdout")
	cmd.MarkFlagRequired("config")
	return cmd
}

func runExport(configPath, out string) error {
	configs, err := production.ConfigLoader{}.Load(configPath)
	if err != nil {
		return err
	}
	engine, err := occupancyx.NewEngine(configs)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(engine.ExportState(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if out == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(out, data, 0o644)
}
