// Package suncycle computes sunrise and sunset for a study site and
// classifies time-of-day angles into diel periods (night, dawn, day,
// dusk). Camera-trap studies use these to label species as nocturnal,
// diurnal, crepuscular, or cathemeral.
package suncycle

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"github.com/trailcam/camtrap-activity/pkg/circular"
)

const (
	minutesPerDay = 1440.0
	twoPi         = 2 * math.Pi
)

// Period is one segment of the diel cycle.
type Period string

const (
	PeriodNight Period = "night"
	PeriodDawn  Period = "dawn"
	PeriodDay   Period = "day"
	PeriodDusk  Period = "dusk"
)

// SunTimes holds sunrise and sunset as minutes from local midnight for
// one site and date. PolarDay/PolarNight flag high-latitude dates where
// the sun never sets or never rises; the minute fields are then -1.
type SunTimes struct {
	SunriseMinutes float64 `json:"sunrise_minutes"`
	SunsetMinutes  float64 `json:"sunset_minutes"`
	PolarDay       bool    `json:"polar_day,omitempty"`
	PolarNight     bool    `json:"polar_night,omitempty"`
}

// SunriseAngle returns sunrise as a circular time-of-day angle, the
// coordinate Classify works in.
func (st SunTimes) SunriseAngle() float64 {
	return st.SunriseMinutes / minutesPerDay * twoPi
}

// SunsetAngle returns sunset as a circular time-of-day angle.
func (st SunTimes) SunsetAngle() float64 {
	return st.SunsetMinutes / minutesPerDay * twoPi
}

// declinationAndEqOfTime evaluates the Meeus solar position series at the
// given instant, returning solar declination (radians) and the equation
// of time (minutes).
func declinationAndEqOfTime(t time.Time) (declRad, eotMin float64) {
	jd := julian.TimeToJD(t)
	T := (jd - 2451545.0) / 36525.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	sunLong := L0 + C
	omega := 125.04 - 1934.136*T
	lambda := sunLong - 0.00569 - 0.00478*math.Sin(degToRad(omega))
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	declRad = math.Asin(math.Sin(degToRad(eps0)) * math.Sin(degToRad(lambda)))

	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	eotMin = radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	return declRad, eotMin
}

// Times computes sunrise and sunset for the given date at a site. The
// result is expressed in the timezone of the date's location, so passing
// a date in the camera's local zone yields local-clock sun times,
// matching the clock times recorded on the camera traps.
func Times(date time.Time, latitude, longitude float64) SunTimes {
	year, month, day := date.Date()
	noonLocal := time.Date(year, month, day, 12, 0, 0, 0, date.Location())

	declRad, eotMin := declinationAndEqOfTime(noonLocal.UTC())

	latRad := degToRad(latitude)
	cosH := -math.Tan(latRad) * math.Tan(declRad)
	if cosH < -1.0 {
		return SunTimes{SunriseMinutes: -1, SunsetMinutes: -1, PolarDay: true}
	}
	if cosH > 1.0 {
		return SunTimes{SunriseMinutes: -1, SunsetMinutes: -1, PolarNight: true}
	}

	hourAngleMin := radToDeg(math.Acos(cosH)) * 4.0

	// Solar noon in UTC minutes, then shifted into the date's zone.
	_, zoneOffsetSec := noonLocal.Zone()
	solarNoonUTC := 720.0 - longitude*4.0 - eotMin
	solarNoonLocal := solarNoonUTC + float64(zoneOffsetSec)/60.0

	sunrise := math.Mod(solarNoonLocal-hourAngleMin+minutesPerDay, minutesPerDay)
	sunset := math.Mod(solarNoonLocal+hourAngleMin+minutesPerDay, minutesPerDay)

	return SunTimes{SunriseMinutes: sunrise, SunsetMinutes: sunset}
}

// Classify assigns a time-of-day angle to a diel period. Dawn and dusk
// are the windows of twilightHalfWidth on either side of sunrise and
// sunset respectively.
func (st SunTimes) Classify(angle float64, twilightHalfWidth time.Duration) Period {
	if st.PolarDay {
		return PeriodDay
	}
	if st.PolarNight {
		return PeriodNight
	}

	sunrise := st.SunriseAngle()
	sunset := st.SunsetAngle()
	halfWidth := twilightHalfWidth.Minutes() / minutesPerDay * twoPi

	if circular.Distance(angle, sunrise) <= halfWidth {
		return PeriodDawn
	}
	if circular.Distance(angle, sunset) <= halfWidth {
		return PeriodDusk
	}

	// Between sunrise and sunset, measured going forward around the clock.
	dayLength := wrapAngle(sunset - sunrise)
	sinceSunrise := wrapAngle(angle - sunrise)
	if sinceSunrise < dayLength {
		return PeriodDay
	}
	return PeriodNight
}

// DielBreakdown is the fraction of a sample falling in each period.
type DielBreakdown struct {
	Night float64 `json:"night"`
	Dawn  float64 `json:"dawn"`
	Day   float64 `json:"day"`
	Dusk  float64 `json:"dusk"`
}

// Breakdown classifies every angle in a sample and returns the period
// fractions. An empty sample returns the zero breakdown.
func (st SunTimes) Breakdown(sample []float64, twilightHalfWidth time.Duration) DielBreakdown {
	if len(sample) == 0 {
		return DielBreakdown{}
	}

	var b DielBreakdown
	inc := 1.0 / float64(len(sample))
	for _, a := range sample {
		switch st.Classify(a, twilightHalfWidth) {
		case PeriodNight:
			b.Night += inc
		case PeriodDawn:
			b.Dawn += inc
		case PeriodDay:
			b.Day += inc
		case PeriodDusk:
			b.Dusk += inc
		}
	}
	return b
}

// DielClass names the activity pattern implied by a breakdown, using the
// conventional two-thirds majority rule with a crepuscular override.
func (b DielBreakdown) DielClass() string {
	switch {
	case b.Dawn+b.Dusk >= 0.5:
		return "crepuscular"
	case b.Night >= 2.0/3.0:
		return "nocturnal"
	case b.Day >= 2.0/3.0:
		return "diurnal"
	default:
		return "cathemeral"
	}
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

// wrapAngle maps any angle onto [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}
