package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comalice/occupancyx"
	"github.com/comalice/occupancyx/internal/production"
)

func restoreCmd() *cobra.Command {
	var configPath, snapshotPath string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore a snapshot into a fresh engine and report malformed-field warnings",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runRestore(configPath, snapshotPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the location hierarchy config (YAML or JSON)")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "path to a previously exported snapshot (YAML or JSON)")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("snapshot")
	return cmd
}

func runRestore(configPath, snapshotPath string) error {
	configs, err := production.ConfigLoader{}.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	engine, err := occupancyx.NewEngine(configs)
	if err != nil {
		return fmt.Errorf("construct engine: %w", err)
	}

	snap, warnings, err := production.SnapshotLoader{}.Load(snapshotPath)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	for _, w := range warnings {
		fmt.Printf("warning: %s: %s\n", w.LocationID, w.Reason)
	}

	now := time.Now()
	res := engine.RestoreState(snap, now)
	for _, tr := range res.Transitions {
		fmt.Printf("%s %s -> occupied=%v\n", tr.LocationID, tr.Kind, tr.New.IsOccupied)
	}
	if next := engine.NextExpiration(); next != nil {
		fmt.Printf("next_expiration: %s\n", next.Format(time.RFC3339))
	}
	return nil
}
