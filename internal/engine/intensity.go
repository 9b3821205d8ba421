package engine

import "fmt"

// Intensity is the discrete quality/quantity level shared by every effect.
// One lookup table scales particle count, speed, opacity, and continuous
// spawn rate, so "low" means the same thing everywhere.
type Intensity uint8

const (
	IntensityOff Intensity = iota
	IntensityLow
	IntensityMedium
	IntensityHigh
)

func (i Intensity) String() string {
	switch i {
	case IntensityOff:
		return "off"
	case IntensityLow:
		return "low"
	case IntensityMedium:
		return "medium"
	case IntensityHigh:
		return "high"
	}
	return "unknown"
}

// ParseIntensity converts a level name ("off", "low", "medium", "high").
func ParseIntensity(s string) (Intensity, error) {
	switch s {
	case "off":
		return IntensityOff, nil
	case "low":
		return IntensityLow, nil
	case "medium":
		return IntensityMedium, nil
	case "high":
		return IntensityHigh, nil
	}
	return IntensityOff, fmt.Errorf("unknown intensity %q", s)
}

// CountScale multiplies an effect's base particle capacity.
func (i Intensity) CountScale() float64 {
	switch i {
	case IntensityLow:
		return 0.4
	case IntensityMedium:
		return 1.0
	case IntensityHigh:
		return 1.8
	}
	return 0
}

// SpeedScale multiplies spawn velocities.
func (i Intensity) SpeedScale() float64 {
	switch i {
	case IntensityLow:
		return 0.75
	case IntensityMedium:
		return 1.0
	case IntensityHigh:
		return 1.15
	}
	return 0
}

// OpacityScale multiplies spawn opacity.
func (i Intensity) OpacityScale() float64 {
	switch i {
	case IntensityLow:
		return 0.85
	case IntensityMedium, IntensityHigh:
		return 1.0
	}
	return 0
}

// SpawnRate is the continuous-spawn pacing in particles per second.
func (i Intensity) SpawnRate() float64 {
	switch i {
	case IntensityLow:
		return 1.5
	case IntensityMedium:
		return 4
	case IntensityHigh:
		return 8
	}
	return 0
}
