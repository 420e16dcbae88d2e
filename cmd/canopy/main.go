// Package main implements the canopy CLI tool.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/canopyreview/canopy/internal/config"
	"github.com/canopyreview/canopy/remote/rpc"
	"github.com/canopyreview/canopy/workspace"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Canopy - multi-document workspace review tools",
}

var (
	flagServiceURL string
	flagVerbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServiceURL, "url", "", "Workspace service URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log sync diagnostics to stderr")
}

func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return config.Load(cwd)
}

func newLogger() zerolog.Logger {
	if !flagVerbose {
		return zerolog.Nop()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).With().Timestamp().Logger()
}

// dialService connects to the configured backend. Commands that manage
// live workspaces need a service URL; layout preview works without one.
func dialService(cmd *cobra.Command, cfg *config.Config) (*rpc.Client, error) {
	url := flagServiceURL
	if url == "" {
		url = cfg.Service.URL
	}
	if url == "" {
		return nil, fmt.Errorf("no service URL configured; set [service] url in canopy.toml or pass --url")
	}

	opts := []rpc.Option{rpc.WithLogger(newLogger())}
	if timeout := cfg.Service.Timeout(); timeout > 0 {
		opts = append(opts, rpc.WithTimeout(timeout))
	}

	client, err := rpc.Dial(cmd.Context(), url, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// openSession dials the backend and opens an existing workspace.
func openSession(cmd *cobra.Command, workspaceID string) (*workspace.Session, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := dialService(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger()
	session, err := workspace.Open(cmd.Context(), workspaceID, workspace.Options{
		Service: client,
		Logger:  &logger,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}

	return session, func() { client.Close() }, nil
}
