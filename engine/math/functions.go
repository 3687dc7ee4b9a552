package math

import (
	m "math"
)

const (
	/** @brief An approximate representation of PI. */
	Pi float32 = 3.14159265358979323846
	/** @brief A multiplier used to convert degrees to radians. */
	Deg2Rad float32 = Pi / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	Rad2Deg float32 = 180.0 / Pi
)

// float32 wrappers around the float64 stdlib trig, so the rest of
// the package never converts at the call site.
func sin32(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func cos32(x float32) float32 {
	return float32(m.Cos(float64(x)))
}

func tan32(x float32) float32 {
	return float32(m.Tan(float64(x)))
}

func sqrt32(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

/** @brief Converts provided degrees to radians. */
func DegToRad(degrees float32) float32 {
	return degrees * Deg2Rad
}

/** @brief Converts provided radians to degrees. */
func RadToDeg(radians float32) float32 {
	return radians * Rad2Deg
}
