package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tetragramaton/hm310p-go/internal/config"
	"github.com/tetragramaton/hm310p-go/internal/logging"
	"github.com/tetragramaton/hm310p-go/internal/psu"
	"github.com/tetragramaton/hm310p-go/internal/serialport"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		in         input
		ovp, ocp   float64
		configPath string
	)
	v := config.New()

	cmd := &cobra.Command{
		Use:           "hm310p",
		Short:         "The hm310p command line interface",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireFlags(cmd, "port", "powerstate", "vout", "iout"); err != nil {
				return err
			}
			if cmd.Flags().Changed("ovp") {
				in.OVP = &ovp
			}
			if cmd.Flags().Changed("ocp") {
				in.OCP = &ocp
			}
			p, err := buildPlan(in)
			if err != nil {
				return err
			}

			return withSession(cmd, v, configPath, func(s *psu.Session, cfg *config.Config) error {
				return p.execute(s, out, cfg.Debug)
			})
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	f := cmd.Flags()
	f.StringVarP(&in.Port, "port", "p", "", "Serial device")
	f.StringVarP(&in.PowerState, "powerstate", "s", "", "Power supply switch [on|off]")
	f.Float64VarP(&in.Vout, "vout", "V", 0, fmt.Sprintf("Output voltage in Volt [%g<=x<=%g]", voltageRange.Min, voltageRange.Max))
	f.Float64Var(&ovp, "ovp", 0, fmt.Sprintf("Over voltage protection value in Volt [%g<=x<=%g]", voltageRange.Min, voltageRange.Max))
	f.Float64VarP(&in.Iout, "iout", "I", 0, fmt.Sprintf("Output current in Ampere [%g<=x<=%g]", currentRange.Min, currentRange.Max))
	f.Float64Var(&ocp, "ocp", 0, fmt.Sprintf("Over current protection value in Ampere [%g<=x<=%g]", currentRange.Min, currentRange.Max))
	persistentFlags(cmd, &configPath)

	cmd.AddCommand(
		newPortsCmd(out),
		newStatusCmd(out, &configPath),
		newToggleCmd(out, &configPath),
	)
	return cmd
}

func persistentFlags(cmd *cobra.Command, configPath *string) {
	pf := cmd.PersistentFlags()
	pf.StringVar(configPath, "config", "", "Configuration file (yaml)")
	pf.BoolP("debug", "D", false, "Print a summary and trace register traffic")
}

// bindFlags lets the port and debug flags override config file and env.
// Inherited flags are only merged into cmd.Flags() once cobra parsed them,
// so this runs inside RunE.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range map[string]string{"serial.port": "port", "debug": "debug"} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func requireFlags(cmd *cobra.Command, names ...string) error {
	var missing []string
	for _, n := range names {
		if !cmd.Flags().Changed(n) {
			missing = append(missing, "--"+n)
		}
	}
	if len(missing) > 0 {
		return &usageError{msg: fmt.Sprintf("missing option(s) %s", strings.Join(missing, ", "))}
	}
	return nil
}

// withSession loads config, opens the device and runs fn against it.
func withSession(cmd *cobra.Command, v *viper.Viper, configPath string, fn func(*psu.Session, *config.Config) error) error {
	if err := bindFlags(v, cmd); err != nil {
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

	if ok, err := serialport.Exists(cfg.Serial.Port); err == nil && !ok {
		log.Warn("serial port not listed by the host", zap.String("port", cfg.Serial.Port))
	}

	s, err := InitSession(cfg.Serial.Param(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn("close session", zap.Error(err))
		}
	}()
	return fn(s, cfg)
}

func newPortsCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports, marking USB bridges a HM3xxP typically uses",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ports, err := serialport.List()
			if err != nil {
				return err
			}
			return yaml.NewEncoder(out).Encode(ports)
		},
	}
}

func newStatusCmd(out io.Writer, configPath *string) *cobra.Command {
	var format string
	v := config.New()
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print model, switch, protection flags and readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "yaml" && format != "json" {
				return &usageError{flag: "--format", msg: fmt.Sprintf("%q is not one of 'yaml', 'json'", format)}
			}
			return withSession(cmd, v, *configPath, func(s *psu.Session, _ *config.Config) error {
				snap, err := s.Snapshot()
				if err != nil {
					return err
				}
				return encode(out, format, snap)
			})
		},
	}
	cmd.Flags().StringP("port", "p", "", "Serial device")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format [yaml|json]")
	return cmd
}

func newToggleCmd(out io.Writer, configPath *string) *cobra.Command {
	v := config.New()
	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Flip the output switch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, v, *configPath, func(s *psu.Session, _ *config.Config) error {
				state, err := s.TogglePowerState()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Powerstate\t: %s\n", state)
				return nil
			})
		},
	}
	cmd.Flags().StringP("port", "p", "", "Serial device")
	return cmd
}

func encode(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}
