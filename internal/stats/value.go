package stats

import (
	"fmt"
	"math"
)

// Status classifies a computed feature value.
type Status int

const (
	// StatusPresent means the value was computed from real history.
	// A Present zero is a genuine zero, never a stand-in for missing.
	StatusPresent Status = iota
	// StatusAbsent means there was no history to compute from, for
	// example a last-5 window with zero prior matches.
	StatusAbsent
	// StatusInvalid means the inputs existed but were unusable, for
	// example a played match with no recorded goals inside the window.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusAbsent:
		return "absent"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Value is the result of one feature computation. Callers must check
// Status before reading V; a zero V with StatusAbsent carries no
// information.
type Value struct {
	V      float64
	Status Status
	Reason string
}

// Present wraps a successfully computed value.
func Present(v float64) Value {
	return Value{V: v, Status: StatusPresent}
}

// Absent marks a feature that had no history to draw on.
func Absent() Value {
	return Value{Status: StatusAbsent}
}

// Invalid marks a feature whose inputs were present but unusable.
func Invalid(reason string) Value {
	return Value{Status: StatusInvalid, Reason: reason}
}

// Ok reports whether the value was actually computed.
func (v Value) Ok() bool {
	return v.Status == StatusPresent
}

// Ptr returns the value for storage in a nullable column: a float
// pointer when present, nil otherwise.
func (v Value) Ptr() *float64 {
	if v.Status != StatusPresent {
		return nil
	}
	f := v.V
	return &f
}

// Round returns the value rounded to the given number of decimals.
// Non-present values pass through unchanged. Rounding happens once, at
// assembly; intermediate math keeps full precision.
func (v Value) Round(decimals int) Value {
	if v.Status != StatusPresent {
		return v
	}
	pow := math.Pow(10, float64(decimals))
	return Present(math.Round(v.V*pow) / pow)
}
