package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/comalice/occupancyx"
	"github.com/comalice/occupancyx/internal/production"
)

// scriptedEvent is one line of a simulate script: a wall-clock timestamp plus
// the fields occupancyd accepts over POST /events, except target_lock.
type scriptedEvent struct {
	At          time.Time `json:"at"`
	LocationID  string    `json:"location_id"`
	EventType   string    `json:"event_type"`
	Category    string    `json:"category"`
	SourceID    string    `json:"source_id"`
	OccupantID  string    `json:"occupant_id,omitempty"`
	DurationSec *int      `json:"duration_seconds,omitempty"`
	ForceState  *bool     `json:"force_state,omitempty"`
}

func simulateCmd() *cobra.Command {
	var configPath, scriptPath string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a scripted sequence of events against a hierarchy and print every transition",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSimulate(configPath, scriptPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the location hierarchy config (YAML or JSON)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "path to a JSON array of scripted events")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("script")
	return cmd
}

func runSimulate(configPath, scriptPath string) error {
	configs, err := production.ConfigLoader{}.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	raw, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	var script []scriptedEvent
	if err := json.Unmarshal(raw, &script); err != nil {
		return fmt.Errorf("parse script: %w", err)
	}

	engine, err := occupancyx.NewEngine(configs)
	if err != nil {
		return fmt.Errorf("construct engine: %w", err)
	}

	for i, se := range script {
		ev := occupancyx.NewEvent(se.LocationID, occupancyx.EventType(se.EventType), se.Category, se.SourceID, se.At)
		if se.OccupantID != "" {
			ev = ev.WithOccupant(se.OccupantID)
		}
		if se.DurationSec != nil {
			ev = ev.WithDuration(time.Duration(*se.DurationSec) * time.Second)
		}
		if se.ForceState != nil {
			ev = ev.WithForceState(*se.ForceState)
		}

		res, err := engine.HandleEvent(ev, se.At)
		if err != nil {
			return fmt.Errorf("event %d (%s@%s): %w", i, se.EventType, se.LocationID, err)
		}
		for _, tr := range res.Transitions {
			fmt.Printf("%s %s %s -> occupied=%v\n", se.At.Format(time.RFC3339), tr.LocationID, tr.Kind, tr.New.IsOccupied)
		}

		if sweep := engine.CheckTimeouts(se.At); len(sweep.Transitions) > 0 {
			for _, tr := range sweep.Transitions {
				fmt.Printf("%s %s %s -> occupied=%v (sweep)\n", se.At.Format(time.RFC3339), tr.LocationID, tr.Kind, tr.New.IsOccupied)
			}
		}
	}

	if next := engine.NextExpiration(); next != nil {
		fmt.Printf("next_expiration: %s\n", next.Format(time.RFC3339))
	} else {
		fmt.Println("next_expiration: none")
	}
	return nil
}
