package circular

import (
	"errors"
	"math"
	"testing"
)

func TestRayleighTest(t *testing.T) {
	// Deterministic jitter around π/2, mimicking a strongly diurnal species.
	concentrated := make([]float64, 24)
	for i := range concentrated {
		concentrated[i] = math.Pi/2 + 0.2*math.Sin(float64(i)*1.7)
	}

	// Evenly spaced angles: the textbook uniform case.
	uniform := make([]float64, 24)
	for i := range uniform {
		uniform[i] = float64(i) * 2 * math.Pi / 24
	}

	tests := []struct {
		name      string
		sample    []float64
		maxP      float64
		minP      float64
		minRBar   float64
		maxRBar   float64
		direction float64
		checkDir  bool
	}{
		{
			name:      "concentrated sample rejects uniformity",
			sample:    concentrated,
			maxP:      0.001,
			minRBar:   0.9,
			maxRBar:   1.0,
			direction: math.Pi / 2,
			checkDir:  true,
		},
		{
			name:    "uniform sample retains uniformity",
			sample:  uniform,
			minP:    0.99,
			maxRBar: 0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RayleighTest(tt.sample)
			if err != nil {
				t.Fatalf("RayleighTest failed: %v", err)
			}

			if result.N != len(tt.sample) {
				t.Errorf("N = %d, expected %d", result.N, len(tt.sample))
			}
			if result.P < 0 || result.P > 1 {
				t.Errorf("p = %v, outside [0,1]", result.P)
			}
			if tt.maxP > 0 && result.P > tt.maxP {
				t.Errorf("p = %v, expected < %v", result.P, tt.maxP)
			}
			if tt.minP > 0 && result.P < tt.minP {
				t.Errorf("p = %v, expected > %v", result.P, tt.minP)
			}
			if result.MeanResultant < tt.minRBar || (tt.maxRBar > 0 && result.MeanResultant > tt.maxRBar) {
				t.Errorf("R̄ = %v, expected in [%v, %v]", result.MeanResultant, tt.minRBar, tt.maxRBar)
			}
			if tt.checkDir && Distance(result.MeanDirection, tt.direction) > 0.1 {
				t.Errorf("mean direction = %v, expected near %v", result.MeanDirection, tt.direction)
			}
		})
	}
}

func TestRayleighTestEmpty(t *testing.T) {
	if _, err := RayleighTest(nil); !errors.Is(err, ErrEmptySample) {
		t.Errorf("error = %v, expected ErrEmptySample", err)
	}
}
