package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tetragramaton/hm310p-go/internal/config"
	"github.com/tetragramaton/hm310p-go/internal/logging"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	v := config.New()

	cmd := &cobra.Command{
		Use:          "adapter-psu",
		Short:        "Publish HM310P telemetry over MQTT and accept set commands",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlag("debug", cmd.Flags().Lookup("debug")); err != nil {
				return err
			}
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Debug)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, log)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Configuration file (yaml)")
	cmd.Flags().BoolP("debug", "D", false, "Debug logging and register traffic")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	adapter, cleanup, err := InitAdapter(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()
	return adapter.Run(ctx)
}
