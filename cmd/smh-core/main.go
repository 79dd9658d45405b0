package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tetragramaton/hm310p-go/internal/config"
	"github.com/tetragramaton/hm310p-go/internal/logging"
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
	v.SetDefault("mqtt.client_id", "smh-core")

	cmd := &cobra.Command{
		Use:          "smh-core",
		Short:        "Publish Home Assistant discovery for announced devices",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlag("debug", cmd.Flags().Lookup("debug")); err != nil {
				return err
			}
			cfg, err := config.Read(v, configPath)
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

			core, cleanup, err := InitCore(cfg.MQTT, log)
			if err != nil {
				return err
			}
			defer cleanup()
			return core.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Configuration file (yaml)")
	cmd.Flags().BoolP("debug", "D", false, "Debug logging")
	return cmd
}
