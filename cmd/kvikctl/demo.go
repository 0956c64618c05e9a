package main

import (
	"fmt"

	"github.com/kvikmesh/kvik-go/internal/client"
	"github.com/kvikmesh/kvik-go/internal/demogateway"
	"github.com/kvikmesh/kvik-go/internal/localbroker"
	"github.com/kvikmesh/kvik-go/internal/looplayer"
	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

// demoGatewayAddr and demoGatewayPref identify the single simulated
// gateway every kvikctl invocation discovers or resumes against. Keeping
// them fixed lets a state file saved by one invocation resume cleanly in
// the next.
var (
	demoGatewayAddr = kvik.NewLocalAddr([]byte{0xD0})
	demoGatewayPref = int16(10)
)

// newDemoClient builds a Client wired to a fresh loopback local layer, in
// this process's in-memory broker, and a demogateway.Gateway standing in
// for a real gateway, then performs discovery or retained-state resume.
func newDemoClient(cfg client.Config, retained client.RetainedData) (*client.Client, error) {
	ll := looplayer.New()
	broker := localbroker.New(cfg.Log)
	demogateway.New(demoGatewayAddr, demoGatewayPref, cfg.Node.MsgIDCache.TimeUnit, broker, ll, cfg.Log)

	return client.New(cfg, ll, retained)
}

// connect loads the client configuration and any previously retained
// state, then builds a Client, resuming from that state if present.
func connect() (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	retained, err := loadRetainedState(statePath)
	if err != nil {
		return nil, fmt.Errorf("loading retained state: %w", err)
	}

	return newDemoClient(cfg, retained)
}

// disconnect retains c's state to statePath and closes it.
func disconnect(c *client.Client) error {
	retained := c.Retain()
	c.Close()
	return saveRetainedState(statePath, retained)
}
