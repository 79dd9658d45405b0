package psu

// ModelHM310P is the model code reported by the 10 A variant.
const ModelHM310P uint16 = 3010

const (
	MinVoltage = 0.0
	MaxVoltage = 32.0
	MinCurrent = 0.0
	// MaxCurrentHM310P is the rated current of ModelHM310P.
	MaxCurrentHM310P = 10.0
	// MaxCurrentDefault applies to every other model code. It assumes the
	// lower-power siblings are rated at half the current; only ModelHM310P
	// has been confirmed.
	MaxCurrentDefault = 5.0
)

// Limits holds the bounds of every scaled quantity for one device model.
type Limits struct {
	Voltage Bounds `json:"voltage" yaml:"voltage"`
	Current Bounds `json:"current" yaml:"current"`
	Power   Bounds `json:"power" yaml:"power"`
}

// LimitsFor derives the bounds for a model code. Maximum power is the rated
// voltage times the rated current.
func LimitsFor(model uint16) Limits {
	maxCurrent := MaxCurrentDefault
	if model == ModelHM310P {
		maxCurrent = MaxCurrentHM310P
	}
	return Limits{
		Voltage: Bounds{Min: MinVoltage, Max: MaxVoltage},
		Current: Bounds{Min: MinCurrent, Max: maxCurrent},
		Power:   Bounds{Min: 0, Max: MaxVoltage * maxCurrent},
	}
}

// For returns the bounds of kind.
func (l Limits) For(kind Quantity) (Bounds, bool) {
	switch kind {
	case Voltage:
		return l.Voltage, true
	case Current:
		return l.Current, true
	case Power:
		return l.Power, true
	}
	return Bounds{}, false
}
