package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/occupancyx"
	"github.com/comalice/occupancyx/internal/production"
)

func validateCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a location hierarchy config (unique ids, no dangling parents, no cycles)",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runValidate(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the location hierarchy config (YAML or JSON)")
	cmd.MarkFlagRequired("config")
	return cmd
}

func runValidate(configPath string) error {
	configs, err := production.ConfigLoader{}.Load(configPath)
	if err != nil {
		return err
	}
	if err := occupancyx.ValidateHierarchy(configs); err != nil {
		return err
	}
	fmt.Printf("ok: %d locations\n", len(configs))
	return nil
}
