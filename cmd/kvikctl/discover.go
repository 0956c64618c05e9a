package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDiscoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover the demo gateway and save its retained state",
		Long: `Discover connects to the in-process demo gateway, performing the same
discovery handshake a real Client would run against a real gateway, then
saves the resulting state so later commands can resume from it instead of
discovering again.`,
		RunE: runDiscover,
	}

	return cmd
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Println("Discovering gateway...")

	c, err := connect()
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	fmt.Println("Gateway found.")

	if err := disconnect(c); err != nil {
		return fmt.Errorf("saving retained state: %w", err)
	}

	fmt.Printf("Retained state saved to %s\n", statePath)
	return nil
}
