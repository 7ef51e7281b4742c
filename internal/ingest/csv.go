// Package ingest reads camera-trap detection tables into observations
// and groups them into per-species circular samples.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/trailcam/camtrap-activity/internal/types"
	"github.com/trailcam/camtrap-activity/pkg/circular"
)

// Default column names follow the camtrapR export convention.
const (
	DefaultSpeciesColumn = "Species"
	DefaultCameraColumn  = "Station"
	DefaultDateColumn    = "Date"
	DefaultTimeColumn    = "Time"
	DefaultDateFormat    = "2006-01-02"
)

// ErrMissingColumn indicates the CSV header lacks a required column.
var ErrMissingColumn = errors.New("ingest: missing column")

// Options configures how a detection table is read.
type Options struct {
	SpeciesColumn string
	CameraColumn  string
	DateColumn    string
	TimeColumn    string
	DateFormat    string

	// Lenient skips rows with malformed dates or times instead of
	// failing the whole import. Skipped rows are counted in Stats and
	// logged by the caller; they are never silently dropped into NaN
	// statistics.
	Lenient bool
}

func (o Options) withDefaults() Options {
	if o.SpeciesColumn == "" {
		o.SpeciesColumn = DefaultSpeciesColumn
	}
	if o.CameraColumn == "" {
		o.CameraColumn = DefaultCameraColumn
	}
	if o.DateColumn == "" {
		o.DateColumn = DefaultDateColumn
	}
	if o.TimeColumn == "" {
		o.TimeColumn = DefaultTimeColumn
	}
	if o.DateFormat == "" {
		o.DateFormat = DefaultDateFormat
	}
	return o
}

// Stats summarizes one import.
type Stats struct {
	Rows    int
	Loaded  int
	Skipped int
	Species int
}

// ReadCSV parses a detection table. The first row must be a header
// containing at least the species, date, and time columns; the camera
// column is optional. Row numbers in errors are 1-based and include the
// header.
func ReadCSV(r io.Reader, opts Options) ([]types.Observation, Stats, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	speciesIdx, ok := cols[opts.SpeciesColumn]
	if !ok {
		return nil, Stats{}, fmt.Errorf("%w: %q", ErrMissingColumn, opts.SpeciesColumn)
	}
	dateIdx, ok := cols[opts.DateColumn]
	if !ok {
		return nil, Stats{}, fmt.Errorf("%w: %q", ErrMissingColumn, opts.DateColumn)
	}
	timeIdx, ok := cols[opts.TimeColumn]
	if !ok {
		return nil, Stats{}, fmt.Errorf("%w: %q", ErrMissingColumn, opts.TimeColumn)
	}
	cameraIdx, hasCamera := cols[opts.CameraColumn]

	var observations []types.Observation
	stats := Stats{}
	seen := make(map[string]bool)

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A wrong field count is a per-row defect like a bad date,
			// so lenient imports skip it rather than abort.
			if opts.Lenient && errors.Is(err, csv.ErrFieldCount) {
				stats.Rows++
				stats.Skipped++
				continue
			}
			return nil, Stats{}, fmt.Errorf("row %d: %w", row, err)
		}
		stats.Rows++

		obs, err := parseRow(record, speciesIdx, cameraIdx, hasCamera, dateIdx, timeIdx, opts.DateFormat)
		if err != nil {
			if opts.Lenient {
				stats.Skipped++
				continue
			}
			return nil, Stats{}, fmt.Errorf("row %d: %w", row, err)
		}

		observations = append(observations, obs)
		stats.Loaded++
		if !seen[obs.Species] {
			seen[obs.Species] = true
			stats.Species++
		}
	}

	return observations, stats, nil
}

func parseRow(record []string, speciesIdx, cameraIdx int, hasCamera bool, dateIdx, timeIdx int, dateFormat string) (types.Observation, error) {
	maxIdx := speciesIdx
	for _, idx := range []int{dateIdx, timeIdx} {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if len(record) <= maxIdx {
		return types.Observation{}, fmt.Errorf("short row: %d fields", len(record))
	}

	species := strings.TrimSpace(record[speciesIdx])
	if species == "" {
		return types.Observation{}, errors.New("empty species")
	}

	date, err := time.Parse(dateFormat, strings.TrimSpace(record[dateIdx]))
	if err != nil {
		return types.Observation{}, fmt.Errorf("bad date %q: %w", record[dateIdx], err)
	}

	angle, err := circular.ParseClock(strings.TrimSpace(record[timeIdx]))
	if err != nil {
		return types.Observation{}, err
	}

	// Reconstruct the full timestamp from the parsed angle so date and
	// time always agree.
	dayFraction := angle / (2 * math.Pi)
	seconds := int(dayFraction*86400 + 0.5)
	ts := date.Add(time.Duration(seconds) * time.Second)

	obs := types.Observation{
		Species:   species,
		Timestamp: ts,
		Angle:     angle,
	}
	if hasCamera && cameraIdx < len(record) {
		obs.Camera = strings.TrimSpace(record[cameraIdx])
	}
	return obs, nil
}

// BySpecies groups observation angles per species, each sample ordered
// by timestamp.
func BySpecies(observations []types.Observation) map[string][]float64 {
	sorted := make([]types.Observation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	samples := make(map[string][]float64)
	for _, obs := range sorted {
		samples[obs.Species] = append(samples[obs.Species], obs.Angle)
	}
	return samples
}
