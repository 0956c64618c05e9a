package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

func newSubscribeCommand() *cobra.Command {
	var (
		topic        string
		demoPayload  string
		waitDuration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe to a topic and demonstrate a pushed delivery",
		Long: `Subscribe registers interest in topic, then publishes one demo message
to that same topic from within this process, to show the gateway pushing
subscription data back to the client. There is no external publisher in
this demo environment for the subscription to otherwise receive from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubscribe(topic, demoPayload, waitDuration)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic pattern to subscribe to (required)")
	cmd.Flags().StringVar(&demoPayload, "demo-payload", "hello from kvikctl", "payload of the self-published demo message")
	cmd.Flags().DurationVar(&waitDuration, "wait", 2*time.Second, "how long to wait for the pushed delivery")
	if err := cmd.MarkFlagRequired("topic"); err != nil {
		panic(fmt.Sprintf("failed to mark topic as required: %v", err))
	}

	return cmd
}

func runSubscribe(topic, demoPayload string, wait time.Duration) error {
	c, err := connect()
	if err != nil {
		return fmt.Errorf("connecting to gateway: %w", err)
	}
	defer func() {
		if err := disconnect(c); err != nil {
			fmt.Printf("warning: saving retained state: %v\n", err)
		}
	}()

	received := make(chan kvik.SubData, 1)
	fmt.Printf("Subscribing to topic '%s'...\n", topic)
	if err := c.Subscribe(topic, func(data kvik.SubData) { received <- data }); !err.Ok() {
		return fmt.Errorf("subscribe failed: %w", err)
	}

	fmt.Printf("Publishing demo message to topic '%s'...\n", topic)
	if err := c.Publish(topic, demoPayload); !err.Ok() {
		return fmt.Errorf("demo publish failed: %w", err)
	}

	select {
	case data := <-received:
		fmt.Printf("Received: %s\n", data.String())
	case <-time.After(wait):
		fmt.Println("No delivery received within the wait period.")
	}

	return nil
}
