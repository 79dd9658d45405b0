package main

import (
	"fmt"
	"io"

	"github.com/tetragramaton/hm310p-go/internal/psu"
)

// Flag intervals accepted by the command line, independent of the model.
var (
	voltageRange = psu.Bounds{Min: psu.MinVoltage, Max: psu.MaxVoltage}
	currentRange = psu.Bounds{Min: psu.MinCurrent, Max: psu.MaxCurrentHM310P}
)

// protectionMargin is applied to Vout/Iout when OVP/OCP are not given.
const protectionMargin = 1.05

// usageError marks failures caused by the command line itself.
type usageError struct {
	flag string
	msg  string
}

func (e *usageError) Error() string {
	if e.flag == "" {
		return e.msg
	}
	return fmt.Sprintf("invalid value for %s: %s", e.flag, e.msg)
}

type input struct {
	Port       string
	PowerState string
	Vout       float64
	Iout       float64
	OVP        *float64
	OCP        *float64
}

type plan struct {
	Port    string
	State   psu.PowerState
	Vout    float64
	Iout    float64
	OVP     float64
	OCP     float64
	ovpAuto bool
	ocpAuto bool
	OVPNote string
	OCPNote string
}

func checkFlag(flag string, v float64, b psu.Bounds) error {
	if err := b.Check(v, flag); err != nil {
		return &usageError{flag: flag, msg: fmt.Sprintf("%g is not in the range %g<=x<=%g", v, b.Min, b.Max)}
	}
	return nil
}

// buildPlan validates the flags and fills in protection defaults.
func buildPlan(in input) (plan, error) {
	state, err := psu.ParsePowerState(in.PowerState)
	if err != nil {
		return plan{}, &usageError{flag: "--powerstate", msg: fmt.Sprintf("%q is not one of 'on', 'off'", in.PowerState)}
	}
	if err := checkFlag("--vout", in.Vout, voltageRange); err != nil {
		return plan{}, err
	}
	if err := checkFlag("--iout", in.Iout, currentRange); err != nil {
		return plan{}, err
	}

	p := plan{Port: in.Port, State: state, Vout: in.Vout, Iout: in.Iout}

	if in.OVP != nil {
		if err := checkFlag("--ovp", *in.OVP, voltageRange); err != nil {
			return plan{}, err
		}
		p.OVP = *in.OVP
	} else {
		p.ovpAuto = true
		p.OVP, p.OVPNote = defaultProtection(in.Vout, voltageRange.Max, "OVP", "Vout", "V")
	}

	if in.OCP != nil {
		if err := checkFlag("--ocp", *in.OCP, currentRange); err != nil {
			return plan{}, err
		}
		p.OCP = *in.OCP
	} else {
		p.ocpAuto = true
		p.OCP, p.OCPNote = defaultProtection(in.Iout, currentRange.Max, "OCP", "Iout", "A")
	}

	if err := p.checkProtection(); err != nil {
		return plan{}, err
	}
	return p, nil
}

// checkProtection rejects protection thresholds below the output they guard.
func (p plan) checkProtection() error {
	if p.OVP < p.Vout {
		return &usageError{flag: "--ovp", msg: fmt.Sprintf("OVP=%02.3f V < Vout=%02.3f V", p.OVP, p.Vout)}
	}
	if p.OCP < p.Iout {
		return &usageError{flag: "--ocp", msg: fmt.Sprintf("OCP=%02.3f A < Iout=%02.3f A", p.OCP, p.Iout)}
	}
	return nil
}

func defaultProtection(out, max float64, name, outName, unit string) (float64, string) {
	v := protectionMargin * out
	if v > max {
		return max, fmt.Sprintf(" => %s not given, clipped to %02.3f %s", name, max, unit)
	}
	return v, fmt.Sprintf(" => %s not given, set 5%% larger than %s", name, outName)
}

// fitDevice clips defaulted protection values to the limits the connected
// model reports, then checks the whole plan against those limits. Explicit
// values are never clipped.
func (p *plan) fitDevice(l psu.Limits) error {
	if p.ovpAuto && p.OVP > l.Voltage.Max {
		p.OVP = l.Voltage.Max
		p.OVPNote = fmt.Sprintf(" => OVP not given, clipped to %02.3f V", p.OVP)
	}
	if p.ocpAuto && p.OCP > l.Current.Max {
		p.OCP = l.Current.Max
		p.OCPNote = fmt.Sprintf(" => OCP not given, clipped to %02.3f A", p.OCP)
	}

	for _, c := range []struct {
		flag string
		v    float64
		b    psu.Bounds
	}{
		{"--vout", p.Vout, l.Voltage},
		{"--iout", p.Iout, l.Current},
		{"--ovp", p.OVP, l.Voltage},
		{"--ocp", p.OCP, l.Current},
	} {
		if err := checkFlag(c.flag, c.v, c.b); err != nil {
			return err
		}
	}
	return p.checkProtection()
}

func (p plan) summary(w io.Writer) {
	fmt.Fprintln(w, "Welcome to the hm310p command line interface.")
	fmt.Fprintf(w, "Port\t\t: %s\n", p.Port)
	fmt.Fprintf(w, "Powerstate\t: %s\n", p.State)
	fmt.Fprintf(w, "Vout\t\t: %02.3f V\n", p.Vout)
	fmt.Fprintf(w, "OVP\t\t: %02.3f V%s\n", p.OVP, p.OVPNote)
	fmt.Fprintf(w, "Iout\t\t: %02.3f A\n", p.Iout)
	fmt.Fprintf(w, "OCP\t\t: %02.3f A%s\n", p.OCP, p.OCPNote)
}

// supply is the part of *psu.Session the command drives.
type supply interface {
	Limits() psu.Limits
	SetOCP(v float64) error
	SetOVP(v float64) error
	SetOPP(v float64) error
	SetOPPFromOutput() (float64, error)
	GetOPP() (float64, error)
	SetCurrent(c psu.Channel, v float64) error
	SetVoltage(c psu.Channel, v float64) error
	SetPowerState(state psu.PowerState) error
}

// execute fits the plan to the connected supply and applies it. Nothing is
// written when the plan does not fit.
func (p plan) execute(s supply, w io.Writer, debug bool) error {
	if err := p.fitDevice(s.Limits()); err != nil {
		return err
	}
	if debug {
		p.summary(w)
	}
	return p.apply(s, w)
}

// apply drives the supply to the plan. Switching on seeds OPP from the live
// output, programs protection and preset, sets OPP = Vout*Iout and switches
// the output on last.
func (p plan) apply(s supply, w io.Writer) error {
	if p.State == psu.Off {
		if err := s.SetVoltage(psu.Preset, 0); err != nil {
			return err
		}
		if err := s.SetCurrent(psu.Preset, 0); err != nil {
			return err
		}
		return s.SetPowerState(psu.Off)
	}

	if _, err := s.SetOPPFromOutput(); err != nil {
		return err
	}
	opp, err := s.GetOPP()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "OPP: %2.3f\n", opp)

	if err := s.SetOCP(p.OCP); err != nil {
		return err
	}
	if err := s.SetCurrent(psu.Preset, p.Iout); err != nil {
		return err
	}
	if err := s.SetOVP(p.OVP); err != nil {
		return err
	}
	if err := s.SetVoltage(psu.Preset, p.Vout); err != nil {
		return err
	}
	if err := s.SetOPP(s.Limits().Power.Clip(p.Vout * p.Iout)); err != nil {
		return err
	}
	if opp, err = s.GetOPP(); err != nil {
		return err
	}
	fmt.Fprintf(w, "OPP limit: %2.3f\n", opp)
	return s.SetPowerState(psu.On)
}
