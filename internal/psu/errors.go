package psu

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotReady is returned by operations on a session that never completed its handshake.
	ErrNotReady = errors.New("psu: session not ready")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("psu: session closed")
	// ErrInvalidPowerState is returned when the power switch reads, or is asked
	// to become, something other than Off or On.
	ErrInvalidPowerState = errors.New("psu: invalid power state")
	// ErrOutOfRange matches every *OutOfRangeError.
	ErrOutOfRange = errors.New("psu: value out of range")
)

// OutOfRangeError reports a value outside [Min, Max].
type OutOfRangeError struct {
	Label string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %g out of range [%g, %g]", e.Label, e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// UnknownChannelError reports a channel name outside the declared set.
type UnknownChannelError struct {
	Name string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("unknown channel %q", e.Name)
}

// UnsupportedQuantityError reports a quantity the channel does not carry.
// Key holds the raw key when it could not be parsed at all.
type UnsupportedQuantityError struct {
	Channel  Channel
	Quantity Quantity
	Key      string
}

func (e *UnsupportedQuantityError) Error() string {
	q := e.Key
	if q == "" {
		q = e.Quantity.String()
	}
	return fmt.Sprintf("channel %s does not support %q", e.Channel, q)
}

// InvalidChannelError reports the names of a channel list that failed validation.
type InvalidChannelError struct {
	Names []string
	Err   error
}

func (e *InvalidChannelError) Error() string {
	return fmt.Sprintf("invalid channel(s) %s", strings.Join(e.Names, ", "))
}

func (e *InvalidChannelError) Unwrap() error { return e.Err }

// ReadOnlyError reports a write attempted on a read-only register.
type ReadOnlyError struct {
	Register Register
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("register %s is read-only", e.Register)
}

// CommError carries a transport failure. Its message is the transport's own.
type CommError struct {
	Op      string
	Address uint16
	Err     error
}

func (e *CommError) Error() string { return e.Err.Error() }

func (e *CommError) Unwrap() error { return e.Err }

// IsCommError reports whether err came from the transport.
func IsCommError(err error) bool {
	var ce *CommError
	return errors.As(err, &ce)
}
