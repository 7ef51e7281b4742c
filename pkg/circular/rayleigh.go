package circular

import "math"

// RayleighResult holds the outcome of a Rayleigh uniformity test.
type RayleighResult struct {
	N             int     `json:"n"`
	MeanDirection float64 `json:"mean_direction"`
	MeanResultant float64 `json:"mean_resultant_length"`
	Z             float64 `json:"z"`
	P             float64 `json:"p"`
}

// RayleighTest tests a sample of angles for non-uniformity. The test
// statistic is z = n·R̄², large when the sample is concentrated around a
// single direction. The p-value uses Zar's correction to the first-order
// exp(−z) approximation, accurate for n as small as 10 and conservative
// below that.
func RayleighTest(sample []float64) (RayleighResult, error) {
	dir, rBar, err := MeanResultant(sample)
	if err != nil {
		return RayleighResult{}, err
	}

	n := float64(len(sample))
	r := n * rBar
	z := r * r / n

	p := math.Exp(math.Sqrt(1+4*n+4*(n*n-r*r)) - (1 + 2*n))
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}

	return RayleighResult{
		N:             len(sample),
		MeanDirection: dir,
		MeanResultant: rBar,
		Z:             z,
		P:             p,
	}, nil
}
