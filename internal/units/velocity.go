package units

// ConvertVelocity converts a velocity from pixels per second to the target units.
// The velocity estimator reports px/s, so unknown units pass the value through.
func ConvertVelocity(pxPerSecond float64, targetUnits string) float64 {
	switch targetUnits {
	case PxPerMillisecond:
		return pxPerSecond / 1000
	case PxPerSecond:
		return pxPerSecond
	default:
		return pxPerSecond
	}
}
