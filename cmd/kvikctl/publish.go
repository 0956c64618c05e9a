package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishCommand() *cobra.Command {
	var (
		topic   string
		payload string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a message to a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(topic, payload)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic to publish to (required)")
	cmd.Flags().StringVar(&payload, "payload", "", "payload to publish")
	if err := cmd.MarkFlagRequired("topic"); err != nil {
		panic(fmt.Sprintf("failed to mark topic as required: %v", err))
	}

	return cmd
}

func runPublish(topic, payload string) error {
	c, err := connect()
	if err != nil {
		return fmt.Errorf("connecting to gateway: %w", err)
	}
	defer func() {
		if err := disconnect(c); err != nil {
			fmt.Printf("warning: saving retained state: %v\n", err)
		}
	}()

	fmt.Printf("Publishing to topic '%s'...\n", topic)

	if err := c.Publish(topic, payload); !err.Ok() {
		return fmt.Errorf("publish failed: %w", err)
	}

	fmt.Println("Published.")
	return nil
}
