package atmosphere

import "math"

const (
	GravConstant = 6.67430e-11 // m^3/(kg*s^2)
	BodyMass     = 6.4171e23   // kg
	BodyRadius   = 3_389_500.0 // m

	SurfaceDensity  = 0.020    // kg/m^3
	SurfacePressure = 610.0    // Pa
	SurfaceTemp     = 210.0    // K
	ScaleHeight     = 11_100.0 // m

	GasConstant = 8.314   // J/(mol*K)
	MolarMass   = 0.04345 // kg/mol
	HeatRatio   = 1.3

	// MinTemperature keeps the speed of sound away from zero high up.
	MinTemperature = 50.0

	minExponent = -100.0
	maxExponent = 10.0
)

func clampAltitude(alt float64) float64 {
	if alt < 0 {
		return 0
	}
	return alt
}

func Density(alt float64) float64 {
	return SurfaceDensity * math.Exp(-clampAltitude(alt)/ScaleHeight)
}

func Pressure(alt float64) float64 {
	return SurfacePressure * math.Exp(-clampAltitude(alt)/ScaleHeight)
}

// Gravity returns the local gravitational acceleration, positive downward.
func Gravity(alt float64) float64 {
	r := BodyRadius + clampAltitude(alt)
	return GravConstant * BodyMass / (r * r)
}

func Temperature(alt float64) float64 {
	exponent := -clampAltitude(alt) / (2 * ScaleHeight)
	exponent = math.Max(minExponent, math.Min(maxExponent, exponent))
	return math.Max(SurfaceTemp*math.Exp(exponent), MinTemperature)
}

func SpeedOfSound(alt float64) float64 {
	return math.Sqrt(HeatRatio * GasConstant * Temperature(alt) / MolarMass)
}

func Mach(v, alt float64) float64 {
	return v / SpeedOfSound(alt)
}

func DynamicPressure(v, alt float64) float64 {
	return 0.5 * Density(alt) * v * v
}

func DragForce(v, alt, cd, area float64) float64 {
	return 0.5 * Density(alt) * v * v * cd * area
}

// HeatingProxy is a relative aerodynamic heating figure, q*(v/1000)^2.
func HeatingProxy(v, alt float64) float64 {
	kms := v / 1000
	return DynamicPressure(v, alt) * kms * kms
}
