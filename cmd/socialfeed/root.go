package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MyNameIsWhaaat/socialfeed/internal/config"
	"github.com/MyNameIsWhaaat/socialfeed/internal/logging"
)

var (
	storeFlag string
	portFlag  string
)

var rootCmd = &cobra.Command{
	Use:           "socialfeed",
	Short:         "Read service for author comment listings and follower timelines",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "comment store: memory, postgres, sqlite or mongo (overrides COMMENT_STORE)")
	rootCmd.PersistentFlags().StringVar(&portFlag, "port", "", "HTTP port (overrides PORT)")
	rootCmd.AddCommand(serveCmd, commentsCmd, timelineCmd)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if storeFlag != "" {
		cfg.CommentStore = strings.ToLower(storeFlag)
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}
	return cfg, cfg.Validate()
}

func setup(ctx context.Context) (*config.Config, *app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	a, err := build(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}
