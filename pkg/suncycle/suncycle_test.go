package suncycle

import (
	"math"
	"testing"
	"time"
)

func TestTimes(t *testing.T) {
	tests := []struct {
		name            string
		date            time.Time
		latitude        float64
		longitude       float64
		expectedSunrise float64 // minutes from midnight
		expectedSunset  float64
		toleranceMin    float64
		polarDay        bool
		polarNight      bool
	}{
		{
			// At the equator on an equinox the sun rises very close to
			// 06:00 local and sets close to 18:00.
			name:            "equator equinox",
			date:            time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			latitude:        0,
			longitude:       0,
			expectedSunrise: 360,
			expectedSunset:  1080,
			toleranceMin:    20,
		},
		{
			// Mid-latitude summer solstice: long day.
			name:            "45N summer solstice",
			date:            time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
			latitude:        45,
			longitude:       0,
			expectedSunrise: 255,  // ~04:15 UTC
			expectedSunset:  1186, // ~19:46 UTC
			toleranceMin:    30,
		},
		{
			name:       "polar night",
			date:       time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC),
			latitude:   80,
			longitude:  0,
			polarNight: true,
		},
		{
			name:      "midnight sun",
			date:      time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
			latitude:  80,
			longitude: 0,
			polarDay:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Times(tt.date, tt.latitude, tt.longitude)

			if st.PolarDay != tt.polarDay || st.PolarNight != tt.polarNight {
				t.Fatalf("polar flags = day:%v night:%v, expected day:%v night:%v",
					st.PolarDay, st.PolarNight, tt.polarDay, tt.polarNight)
			}
			if tt.polarDay || tt.polarNight {
				return
			}

			if math.Abs(st.SunriseMinutes-tt.expectedSunrise) > tt.toleranceMin {
				t.Errorf("sunrise = %.1f min, expected %.1f ±%.0f",
					st.SunriseMinutes, tt.expectedSunrise, tt.toleranceMin)
			}
			if math.Abs(st.SunsetMinutes-tt.expectedSunset) > tt.toleranceMin {
				t.Errorf("sunset = %.1f min, expected %.1f ±%.0f",
					st.SunsetMinutes, tt.expectedSunset, tt.toleranceMin)
			}
		})
	}
}

func TestSunAngles(t *testing.T) {
	st := SunTimes{SunriseMinutes: 360, SunsetMinutes: 1080}

	if got := st.SunriseAngle(); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("SunriseAngle = %v, expected π/2", got)
	}
	if got := st.SunsetAngle(); math.Abs(got-3*math.Pi/2) > 1e-12 {
		t.Errorf("SunsetAngle = %v, expected 3π/2", got)
	}
}

func TestClassify(t *testing.T) {
	// Fixed sun times so the classification logic is tested in isolation:
	// sunrise 06:00, sunset 18:00, twilight ±60 min.
	st := SunTimes{SunriseMinutes: 360, SunsetMinutes: 1080}
	twilight := time.Hour

	angleFor := func(hour float64) float64 {
		return hour / 24.0 * 2 * math.Pi
	}

	tests := []struct {
		name     string
		hour     float64
		expected Period
	}{
		{name: "midnight", hour: 0, expected: PeriodNight},
		{name: "3am", hour: 3, expected: PeriodNight},
		{name: "dawn edge low", hour: 5.1, expected: PeriodDawn},
		{name: "sunrise", hour: 6, expected: PeriodDawn},
		{name: "dawn edge high", hour: 6.9, expected: PeriodDawn},
		{name: "mid-morning", hour: 9, expected: PeriodDay},
		{name: "noon", hour: 12, expected: PeriodDay},
		{name: "dusk", hour: 18, expected: PeriodDusk},
		{name: "late evening", hour: 21, expected: PeriodNight},
		{name: "just before midnight", hour: 23.9, expected: PeriodNight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := st.Classify(angleFor(tt.hour), twilight); got != tt.expected {
				t.Errorf("Classify(%vh) = %v, expected %v", tt.hour, got, tt.expected)
			}
		})
	}

	if got := (SunTimes{PolarDay: true}).Classify(0, twilight); got != PeriodDay {
		t.Errorf("polar day classification = %v, expected day", got)
	}
	if got := (SunTimes{PolarNight: true}).Classify(angleFor(12), twilight); got != PeriodNight {
		t.Errorf("polar night classification = %v, expected night", got)
	}
}

func TestBreakdownAndDielClass(t *testing.T) {
	st := SunTimes{SunriseMinutes: 360, SunsetMinutes: 1080}
	twilight := time.Hour

	angleFor := func(hour float64) float64 {
		return hour / 24.0 * 2 * math.Pi
	}

	tests := []struct {
		name     string
		hours    []float64
		expected string
	}{
		{name: "owl", hours: []float64{0, 1, 2, 3, 22, 23}, expected: "nocturnal"},
		{name: "squirrel", hours: []float64{9, 10, 11, 13, 14, 15}, expected: "diurnal"},
		{name: "deer", hours: []float64{5.5, 6.2, 17.8, 18.4, 12}, expected: "crepuscular"},
		{name: "generalist", hours: []float64{2, 9, 14, 22}, expected: "cathemeral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := make([]float64, len(tt.hours))
			for i, h := range tt.hours {
				sample[i] = angleFor(h)
			}

			b := st.Breakdown(sample, twilight)
			total := b.Night + b.Dawn + b.Day + b.Dusk
			if math.Abs(total-1.0) > 1e-9 {
				t.Errorf("breakdown fractions sum to %v, expected 1", total)
			}
			if got := b.DielClass(); got != tt.expected {
				t.Errorf("DielClass() = %q, expected %q", got, tt.expected)
			}
		})
	}

	empty := st.Breakdown(nil, twilight)
	if empty != (DielBreakdown{}) {
		t.Errorf("empty sample breakdown = %+v, expected zero", empty)
	}
}
