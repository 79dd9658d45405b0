package psu

import (
	"math"

	"github.com/hashicorp/go-multierror"
)

// Bounds is the closed interval a physical quantity must lie in.
type Bounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Check validates value against b.
func (b Bounds) Check(value float64, label string) error {
	return Check(value, b.Min, b.Max, label)
}

// Clip limits value to b.
func (b Bounds) Clip(value float64) float64 {
	return math.Max(b.Min, math.Min(b.Max, value))
}

// Check returns an *OutOfRangeError unless min <= value <= max. NaN never passes.
func Check(value, min, max float64, label string) error {
	if math.IsNaN(value) || value < min || value > max {
		return &OutOfRangeError{Label: label, Value: value, Min: min, Max: max}
	}
	return nil
}

// ValidateChannels parses names and checks that every channel carries all of
// kinds. Duplicates are dropped, first occurrence wins. Either every name is
// good, or an *InvalidChannelError lists all the bad ones.
func ValidateChannels(names []string, kinds ...Quantity) ([]Channel, error) {
	var (
		merr     *multierror.Error
		bad      []string
		channels = make([]Channel, 0, len(names))
		seen     = make(map[Channel]bool, len(names))
	)
	for _, name := range names {
		c, err := ParseChannel(name)
		if err != nil {
			merr = multierror.Append(merr, err)
			bad = append(bad, name)
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		for _, kind := range kinds {
			if _, err := Resolve(c, kind); err != nil {
				merr = multierror.Append(merr, err)
				bad = append(bad, name)
				break
			}
		}
		channels = append(channels, c)
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, &InvalidChannelError{Names: bad, Err: err}
	}
	return channels, nil
}
