package circular

import (
	"errors"
	"math"
	"testing"
)

// midnightSample straddles the wrap point: half the observations just
// before midnight, half just after.
func midnightSample() []float64 {
	return []float64{
		2*math.Pi - 0.20, 2*math.Pi - 0.12, 2*math.Pi - 0.05, 2*math.Pi - 0.01,
		0.02, 0.06, 0.11, 0.17, 0.23,
	}
}

func TestEstimateWrapContinuity(t *testing.T) {
	samples := map[string][]float64{
		"midnight cluster": midnightSample(),
		"noon cluster":     {math.Pi - 0.2, math.Pi - 0.1, math.Pi, math.Pi + 0.1, math.Pi + 0.2},
		"two modes":        {0.5, 0.6, 0.7, 3.6, 3.7, 3.8},
	}

	for name, sample := range samples {
		for _, bandwidth := range []float64{0.5, 1.0, 2.0} {
			curve, err := Estimate(sample, bandwidth, 1024)
			if err != nil {
				t.Fatalf("%s bw=%v: Estimate failed: %v", name, bandwidth, err)
			}

			peak := 0.0
			for _, v := range curve.Density {
				if v > peak {
					peak = v
				}
			}

			// The first and last grid points are one step apart across the
			// wrap, so they may differ by one step's worth of slope but
			// never by a discontinuity.
			first := curve.Density[0]
			last := curve.Density[len(curve.Density)-1]
			if math.Abs(first-last) > 0.06*peak {
				t.Errorf("%s bw=%v: density discontinuous at wrap: d(0)=%v d(2π⁻)=%v peak=%v",
					name, bandwidth, first, last, peak)
			}
		}
	}
}

func TestEstimateNormalization(t *testing.T) {
	samples := [][]float64{
		{1.0},
		{0.1, 0.2, 0.3},
		midnightSample(),
		{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2},
	}

	for _, sample := range samples {
		for _, bandwidth := range []float64{0.25, 1.0, 3.0} {
			for _, gridSize := range []int{128, 512, 1000} {
				curve, err := Estimate(sample, bandwidth, gridSize)
				if err != nil {
					t.Fatalf("Estimate failed: %v", err)
				}

				var integral float64
				for _, v := range curve.Density {
					if v < 0 {
						t.Fatalf("negative density %v", v)
					}
					integral += v
				}
				integral *= curve.GridStep()

				if math.Abs(integral-1.0) > 1e-3 {
					t.Errorf("n=%d bw=%v grid=%d: integral = %v, expected 1",
						len(sample), bandwidth, gridSize, integral)
				}
			}
		}
	}
}

func TestEstimateMidnightPeak(t *testing.T) {
	// A cluster straddling midnight must peak at the wrap point, not be
	// smeared to the far side of the circle. A linear-distance kernel
	// would split the mass into two lobes and inflate density at noon.
	curve, err := Estimate(midnightSample(), 1.0, 512)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	atMidnight := curve.At(0)
	atNoon := curve.At(math.Pi)
	if atMidnight < 10*atNoon {
		t.Errorf("midnight density %v not dominant over noon density %v", atMidnight, atNoon)
	}
}

func TestEstimateBandwidthSmoothing(t *testing.T) {
	sample := midnightSample()

	narrow, err := Estimate(sample, 0.5, 512)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	wide, err := Estimate(sample, 3.0, 512)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	peakOf := func(c *DensityCurve) float64 {
		peak := 0.0
		for _, v := range c.Density {
			if v > peak {
				peak = v
			}
		}
		return peak
	}

	if peakOf(wide) >= peakOf(narrow) {
		t.Errorf("larger bandwidth should lower the peak: narrow=%v wide=%v",
			peakOf(narrow), peakOf(wide))
	}
}

func TestEstimateErrors(t *testing.T) {
	tests := []struct {
		name      string
		sample    []float64
		bandwidth float64
		gridSize  int
		expected  error
	}{
		{name: "empty sample", sample: nil, bandwidth: 1.0, gridSize: 512, expected: ErrEmptySample},
		{name: "zero bandwidth", sample: []float64{1}, bandwidth: 0, gridSize: 512, expected: ErrInvalidParameter},
		{name: "negative bandwidth", sample: []float64{1}, bandwidth: -1, gridSize: 512, expected: ErrInvalidParameter},
		{name: "NaN bandwidth", sample: []float64{1}, bandwidth: math.NaN(), gridSize: 512, expected: ErrInvalidParameter},
		{name: "tiny grid", sample: []float64{1}, bandwidth: 1.0, gridSize: 4, expected: ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Estimate(tt.sample, tt.bandwidth, tt.gridSize)
			if !errors.Is(err, tt.expected) {
				t.Errorf("error = %v, expected %v", err, tt.expected)
			}
		})
	}
}

func TestMeanResultant(t *testing.T) {
	tests := []struct {
		name      string
		sample    []float64
		direction float64
		length    float64
		epsilon   float64
	}{
		{
			name:      "single point",
			sample:    []float64{math.Pi / 2},
			direction: math.Pi / 2,
			length:    1.0,
			epsilon:   1e-12,
		},
		{
			name:      "tight cluster across midnight",
			sample:    []float64{2*math.Pi - 0.1, 0.1},
			direction: 0,
			length:    math.Cos(0.1),
			epsilon:   1e-9,
		},
		{
			name:    "balanced opposites cancel",
			sample:  []float64{0, math.Pi},
			length:  0,
			epsilon: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, length, err := MeanResultant(tt.sample)
			if err != nil {
				t.Fatalf("MeanResultant failed: %v", err)
			}
			if math.Abs(length-tt.length) > tt.epsilon {
				t.Errorf("length = %v, expected %v", length, tt.length)
			}
			// Direction is meaningless when the resultant has zero length.
			if tt.length > 0 && Distance(dir, tt.direction) > 1e-6 {
				t.Errorf("direction = %v, expected %v", dir, tt.direction)
			}
		})
	}

	if _, _, err := MeanResultant(nil); !errors.Is(err, ErrEmptySample) {
		t.Errorf("empty sample error = %v, expected ErrEmptySample", err)
	}
}
