package database

import "time"

// AnalysisRun records the parameters of one completed analysis pass over
// the observation set.
type AnalysisRun struct {
	ID        string    `gorm:"primaryKey;column:id"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	Bandwidth float64   `gorm:"column:bandwidth"`
	GridSize  int       `gorm:"column:grid_size"`
	Resamples int       `gorm:"column:resamples"`
	Seed      int64     `gorm:"column:seed"`
	Species   int       `gorm:"column:species_count"`
}

// TableName specifies the table name for AnalysisRun
func (AnalysisRun) TableName() string {
	return "analysis_runs"
}

// OverlapRecord is one species pair's overlap coefficient from a run.
type OverlapRecord struct {
	ID       uint    `gorm:"primaryKey;autoIncrement;column:id"`
	RunID    string  `gorm:"column:run_id;index"`
	SpeciesA string  `gorm:"column:species_a"`
	SpeciesB string  `gorm:"column:species_b"`
	Overlap  float64 `gorm:"column:overlap"`
	CILow    float64 `gorm:"column:ci_low"`
	CIHigh   float64 `gorm:"column:ci_high"`
}

// TableName specifies the table name for OverlapRecord
func (OverlapRecord) TableName() string {
	return "overlap_records"
}
