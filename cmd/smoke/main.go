// Command smoke drives a running wangcai service through complete readings.
package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/wangcai/internal/smoke"
	"github.com/okian/wangcai/pkg/logger"
)

// Default configuration constants.
const (
	defaultSessions     = 20
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = time.Second
	defaultWaitTimeout  = 3 * time.Minute

	// exitSessionFailures means the service answered but some sessions broke.
	exitSessionFailures = 2
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if smoke.IsFailures(err) {
			os.Exit(exitSessionFailures)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &smoke.Config{}
	logLevel := "warn"

	cmd := &cobra.Command{
		Use:          "smoke",
		Short:        "Drive a wangcai service through welcome, form, loading and result",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(); err != nil {
				return err
			}
			if err := logger.SetLevelString(logLevel); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg.Logger = logger.Named("smoke")
			_, err := smoke.Run(ctx, cfg, cmd.OutOrStdout())
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&cfg.Sessions, "sessions", defaultSessions, "Number of sessions to drive")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent sessions")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.DurationVar(&cfg.PollInterval, "poll", defaultPollInterval, "Delay between polls while loading")
	f.DurationVar(&cfg.WaitTimeout, "wait", defaultWaitTimeout, "Longest a session may stay loading")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print every session outcome")
	f.StringVar(&logLevel, "log-level", logLevel, "Log level (debug, info, warn, error)")

	cmd.SetContext(context.Background())
	return cmd
}
