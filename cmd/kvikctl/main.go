package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kvikmesh/kvik-go/internal/client"
	"github.com/kvikmesh/kvik-go/pkg/kvik"
)

var (
	// Global flags
	statePath  string
	configPath string
	verbose    bool

	// log is constructed once in initLogger and injected into every Client this
	// process builds, never referenced as a package-level logger elsewhere.
	log *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kvikctl",
		Short: "Kvik client command line interface",
		Long: `kvikctl drives a Kvik Client against an in-process demo gateway.
It has no real radio hardware or broker to talk to: every invocation builds
its own loopback local layer, local broker and gateway shim, so it can
demonstrate discovery, publish/subscribe and retained-state resume without
any external dependency.`,
		PersistentPreRunE: initLogger,
	}

	rootCmd.PersistentFlags().StringVar(&statePath, "state", "kvikctl-state.yaml", "path to the retained client state file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML file overriding the default client configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newDiscoverCommand())
	rootCmd.AddCommand(newPublishCommand())
	rootCmd.AddCommand(newSubscribeCommand())
	rootCmd.AddCommand(newRetainCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initLogger(cmd *cobra.Command, args []string) error {
	log = logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return nil
}

// loadConfig builds a client.Config from the reference defaults, optionally
// overridden by the file at configPath.
func loadConfig() (client.Config, error) {
	cfg := client.DefaultConfig()
	cfg.Log = kvik.NewLogrusLogger(log)

	if configPath != "" {
		if err := overlayConfigFile(configPath, &cfg); err != nil {
			return client.Config{}, fmt.Errorf("loading config file: %w", err)
		}
	}

	return cfg, nil
}
