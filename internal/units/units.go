// Package units provides shared constants and validation for pointer velocity units
package units

import "strings"

// Unit constants
const (
	PxPerSecond      = "px/s"
	PxPerMillisecond = "px/ms"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{PxPerSecond, PxPerMillisecond}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}
