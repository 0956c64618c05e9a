package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRetainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retain",
		Short: "Connect (resuming from any saved state) and re-save the retained state",
		Long: `Retain connects to the gateway, resuming from the state file at --state
if one exists, then immediately retains and re-saves it. Useful to verify
that a previously saved state still resumes without a full rediscovery.`,
		RunE: runRetain,
	}

	return cmd
}

func runRetain(cmd *cobra.Command, args []string) error {
	c, err := connect()
	if err != nil {
		return fmt.Errorf("connecting to gateway: %w", err)
	}

	if err := disconnect(c); err != nil {
		return fmt.Errorf("saving retained state: %w", err)
	}

	fmt.Printf("Retained state saved to %s\n", statePath)
	return nil
}
