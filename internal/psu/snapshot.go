package psu

import "errors"

// Reading is one voltage/current/power triple.
type Reading struct {
	Voltage float64 `json:"voltage" yaml:"voltage"`
	Current float64 `json:"current" yaml:"current"`
	Power   float64 `json:"power" yaml:"power"`
}

// Snapshot is the state of the device at one point in time.
type Snapshot struct {
	Model      uint16         `json:"model" yaml:"model"`
	UnitID     byte           `json:"unit_id" yaml:"unit_id"`
	Precision  PrecisionTable `json:"precision" yaml:"precision"`
	Limits     Limits         `json:"limits" yaml:"limits"`
	PowerState string         `json:"power_state" yaml:"power_state"`
	Protect    string         `json:"protect_status" yaml:"protect_status"`
	Output     Reading        `json:"output" yaml:"output"`
	Protection Reading        `json:"protection" yaml:"protection"`
	Preset     Reading        `json:"preset" yaml:"preset"`
}

// Snapshot reads switch, protection flags and the Output, Protection and
// Preset readings in sequence. Preset has no power register; its Power is zero.
// A switch register holding neither 0 nor 1 is reported as "invalid".
func (s *Session) Snapshot() (Snapshot, error) {
	if err := s.ready(); err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Model:     s.model,
		UnitID:    s.unitID,
		Precision: s.precision,
		Limits:    s.limits,
	}

	state, err := s.GetPowerState()
	if err != nil && !errors.Is(err, ErrInvalidPowerState) {
		return Snapshot{}, err
	}
	snap.PowerState = state.String()

	protect, err := s.GetProtectStatus()
	if err != nil {
		return Snapshot{}, err
	}
	snap.Protect = protect.String()

	if snap.Output, err = s.reading(Output); err != nil {
		return Snapshot{}, err
	}
	if snap.Protection, err = s.reading(Protection); err != nil {
		return Snapshot{}, err
	}
	if snap.Preset, err = s.reading(Preset); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Session) reading(c Channel) (Reading, error) {
	var (
		r   Reading
		err error
	)
	if r.Voltage, err = s.GetVoltage(c); err != nil {
		return Reading{}, err
	}
	if r.Current, err = s.GetCurrent(c); err != nil {
		return Reading{}, err
	}
	if Supports(c, Power) {
		if r.Power, err = s.GetPower(c); err != nil {
			return Reading{}, err
		}
	}
	return r, nil
}
