package circular

import (
	"fmt"
	"math"
)

// DefaultGridSize is the number of evaluation points used when a caller
// does not request a specific grid resolution.
const DefaultGridSize = 512

// maxKappa bounds the kernel concentration so that a degenerate sample
// (all angles identical, mean resultant length 1) produces a very narrow
// but finite kernel instead of overflowing.
const maxKappa = 1000.0

// DensityCurve is a periodic probability density over [0, 2π), tabulated
// on an evenly spaced grid. Theta[i] = i * 2π/N for i in [0, N); the wrap
// point 2π is not duplicated. The tabulation satisfies
// sum(Density) * (2π/N) == 1 up to floating-point rounding.
type DensityCurve struct {
	Theta   []float64 `json:"theta"`
	Density []float64 `json:"density"`
}

// GridStep returns the angular spacing between adjacent grid points.
func (c *DensityCurve) GridStep() float64 {
	return twoPi / float64(len(c.Theta))
}

// At returns the density at an arbitrary angle by linear interpolation
// between the two surrounding grid points, wrapping across 2π.
func (c *DensityCurve) At(angle float64) float64 {
	n := len(c.Theta)
	step := c.GridStep()
	pos := wrap(angle) / step
	i := int(pos) % n
	j := (i + 1) % n
	frac := pos - float64(i)
	return c.Density[i]*(1-frac) + c.Density[j]*frac
}

// MeanResultant returns the direction and length of the mean resultant
// vector of a sample of angles. The length is in [0, 1]: 0 for perfectly
// dispersed samples, 1 when every angle is identical.
func MeanResultant(sample []float64) (direction, length float64, err error) {
	if len(sample) == 0 {
		return 0, 0, ErrEmptySample
	}

	var sumSin, sumCos float64
	for _, a := range sample {
		sumSin += math.Sin(a)
		sumCos += math.Cos(a)
	}
	n := float64(len(sample))
	length = math.Hypot(sumSin, sumCos) / n
	direction = wrap(math.Atan2(sumSin, sumCos))
	return direction, length, nil
}

// concentration estimates the von Mises concentration parameter κ from
// the mean resultant length, using Fisher's piecewise approximation.
func concentration(rBar float64) float64 {
	var kappa float64
	switch {
	case rBar < 0.53:
		kappa = 2*rBar + rBar*rBar*rBar + (5.0/6.0)*math.Pow(rBar, 5)
	case rBar < 0.85:
		kappa = -0.4 + 1.39*rBar + 0.43/(1-rBar)
	default:
		denom := rBar*rBar*rBar - 4*rBar*rBar + 3*rBar
		if denom <= 0 {
			return maxKappa
		}
		kappa = 1 / denom
	}
	if kappa > maxKappa {
		kappa = maxKappa
	}
	return kappa
}

// Estimate computes a von Mises kernel density estimate of a sample of
// angles. A kernel exp(κ(cos d − 1)) is centered at each observation,
// where d is the wrap-aware circular distance to the evaluation point, so
// the estimate is continuous across midnight. The base concentration κ is
// fitted to the sample's mean resultant length and divided by bandwidth²,
// so bandwidth acts as a smoothing multiplier: 1 is the data-driven
// default, larger values give a smoother, lower-peaked curve. The result
// is renormalized to integrate to 1 over the circle.
func Estimate(sample []float64, bandwidth float64, gridSize int) (*DensityCurve, error) {
	if len(sample) == 0 {
		return nil, ErrEmptySample
	}
	if bandwidth <= 0 || math.IsNaN(bandwidth) {
		return nil, fmt.Errorf("%w: bandwidth must be > 0, got %v", ErrInvalidParameter, bandwidth)
	}
	if gridSize < 8 {
		return nil, fmt.Errorf("%w: grid size must be >= 8, got %d", ErrInvalidParameter, gridSize)
	}

	_, rBar, err := MeanResultant(sample)
	if err != nil {
		return nil, err
	}
	kappa := concentration(rBar) / (bandwidth * bandwidth)
	if kappa > maxKappa {
		kappa = maxKappa
	}

	curve := &DensityCurve{
		Theta:   make([]float64, gridSize),
		Density: make([]float64, gridSize),
	}
	step := twoPi / float64(gridSize)

	for i := 0; i < gridSize; i++ {
		theta := float64(i) * step
		curve.Theta[i] = theta

		var sum float64
		for _, a := range sample {
			d := Distance(theta, a)
			sum += math.Exp(kappa * (math.Cos(d) - 1))
		}
		curve.Density[i] = sum
	}

	// Normalize so the Riemann sum over the circle is exactly 1.
	var total float64
	for _, v := range curve.Density {
		total += v
	}
	total *= step
	for i := range curve.Density {
		curve.Density[i] /= total
	}

	return curve, nil
}
