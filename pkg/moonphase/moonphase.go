// Package moonphase computes the illuminated fraction and phase of the
// moon from the ecliptic longitudes of the Sun and Moon. Moonlight is a
// common covariate for nocturnal activity in camera-trap studies;
// accuracy here (~1% illumination) is ample for that use.
package moonphase

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// SynodicMonth is the average length of the lunar cycle in days.
const SynodicMonth = 29.530588853

// Phase describes the moon at one instant.
type Phase struct {
	Illumination float64 `json:"illumination"` // illuminated fraction [0,1]
	AgeDays      float64 `json:"age_days"`     // days since new moon
	Waxing       bool    `json:"waxing"`
	Name         string  `json:"name"`
}

// Calculate computes the moon phase for a given timestamp.
func Calculate(t time.Time) Phase {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	elongation := normalize(moonLongitude(T) - sunLongitude(T))
	illumination := (1 - math.Cos(degToRad(elongation))) / 2
	waxing := elongation < 180

	return Phase{
		Illumination: illumination,
		AgeDays:      elongation / 360.0 * SynodicMonth,
		Waxing:       waxing,
		Name:         name(illumination, waxing),
	}
}

// name maps illumination and direction onto the conventional 8 phases.
func name(illumination float64, waxing bool) string {
	switch {
	case illumination < 0.01:
		return "New Moon"
	case illumination > 0.99:
		return "Full Moon"
	case illumination >= 0.49 && illumination <= 0.51:
		if waxing {
			return "First Quarter"
		}
		return "Third Quarter"
	case illumination < 0.50:
		if waxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if waxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}

// sunLongitude computes the Sun's ecliptic longitude in degrees.
func sunLongitude(T float64) float64 {
	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T

	M := 357.52911 + 35999.05029*T - 0.0001537*T*T
	Mrad := degToRad(normalize(M))

	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	return normalize(L0 + C)
}

// moonLongitude computes the Moon's ecliptic longitude in degrees, using
// the dominant correction terms from Meeus Ch. 47.
func moonLongitude(T float64) float64 {
	L := 218.3164477 + 481267.88123421*T - 0.0015786*T*T +
		T*T*T/538841 - T*T*T*T/65194000
	D := 297.8501921 + 445267.1114034*T - 0.0018819*T*T +
		T*T*T/545868 - T*T*T*T/113065000
	Mp := 134.9633964 + 477198.8675055*T + 0.0087414*T*T +
		T*T*T/69699 - T*T*T*T/14712000

	Drad := degToRad(normalize(D))
	Mprad := degToRad(normalize(Mp))

	lambda := L +
		6.289*math.Sin(Mprad) +
		1.274*math.Sin(2*Drad-Mprad) +
		0.658*math.Sin(2*Drad) +
		0.214*math.Sin(2*Mprad) +
		0.110*math.Sin(Drad)

	return normalize(lambda)
}

func normalize(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
