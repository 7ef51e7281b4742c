package types

import "time"

// Observation is a single camera-trap detection: one species seen by one
// camera at one instant. The circular time-of-day angle is derived from
// the timestamp at ingest and stored alongside it so analyses never have
// to re-derive it.
type Observation struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Species   string    `gorm:"column:species;index" json:"species"`
	Camera    string    `gorm:"column:camera" json:"camera,omitempty"`
	Timestamp time.Time `gorm:"column:time" json:"timestamp"`
	Angle     float64   `gorm:"column:angle" json:"angle"`
}

// TableName implements the gorm Tabler interface
func (Observation) TableName() string {
	return "observations"
}

// SpeciesSummary describes the daily activity pattern of one species.
type SpeciesSummary struct {
	Species       string  `json:"species"`
	Count         int     `json:"count"`
	MeanTime      string  `json:"mean_time"`
	MeanDirection float64 `json:"mean_direction"`
	MeanResultant float64 `json:"mean_resultant_length"`
	RayleighZ     float64 `json:"rayleigh_z"`
	RayleighP     float64 `json:"rayleigh_p"`
	DielClass     string  `json:"diel_class,omitempty"`
	NightFraction float64 `json:"night_fraction,omitempty"`
}

// SpeciesPairOverlap is one cell of the pairwise overlap matrix.
type SpeciesPairOverlap struct {
	SpeciesA string  `json:"species_a"`
	SpeciesB string  `json:"species_b"`
	Overlap  float64 `json:"overlap"`
	CILow    float64 `json:"ci_low"`
	CIHigh   float64 `json:"ci_high"`
}
