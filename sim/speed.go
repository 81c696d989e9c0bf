package sim

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Slider bounds for a planet's angular speed, in radians per nominal 60 Hz
// frame.
const (
	MinSpeed  = 0.0001
	MaxSpeed  = 0.02
	SpeedStep = 0.0001

	speedDecimals = 4
)

var ErrSpeedOutOfRange = errors.New("speed out of range")

// ParseSpeed parses user text into a speed on the slider grid.
func ParseSpeed(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("parse speed: %w", err)
	}
	return CheckSpeed(v)
}

// CheckSpeed rejects values outside [MinSpeed, MaxSpeed] and snaps the rest
// to SpeedStep.
func CheckSpeed(v float64) (float64, error) {
	if math.IsNaN(v) || v < MinSpeed || v > MaxSpeed {
		return 0, fmt.Errorf("%v not in [%v, %v]: %w", v, MinSpeed, MaxSpeed, ErrSpeedOutOfRange)
	}
	return SnapSpeed(v), nil
}

// SnapSpeed rounds v to the nearest multiple of SpeedStep. The result is the
// float64 closest to the decimal value, so 0.02 stays exactly 0.02.
func SnapSpeed(v float64) float64 {
	snapped, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', speedDecimals, 64), 64)
	if err != nil {
		return v
	}
	return snapped
}

// FormatSpeed renders a speed the way the text field shows it.
func FormatSpeed(v float64) string {
	return strconv.FormatFloat(v, 'f', speedDecimals, 64)
}
