package ops

import (
	"fmt"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/geo"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{fleet.ErrValidation}, args...)...)
}

func checkPositive(name string, v float64) error {
	if !(v > 0) {
		return invalid("%s must be positive", name)
	}
	return nil
}

func checkPercent(name string, v float64) error {
	if !(v >= 0 && v <= 100) {
		return invalid("%s must be within [0,100]", name)
	}
	return nil
}

func checkPoint(name string, p geo.Point) error {
	if !p.Valid() {
		return invalid("%s must have lat in [-90,90] and lon in [-180,180]", name)
	}
	return nil
}
