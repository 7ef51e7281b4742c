// Command activity-report computes daily activity summaries and the
// pairwise activity-overlap matrix for a camera-trap dataset, read from
// a CSV export or straight from the observations table in Postgres.
package main

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	_ "github.com/lib/pq"

	"github.com/trailcam/camtrap-activity/internal/analysis"
	"github.com/trailcam/camtrap-activity/internal/ingest"
	"github.com/trailcam/camtrap-activity/internal/types"
	"github.com/trailcam/camtrap-activity/pkg/circular"
	"github.com/trailcam/camtrap-activity/pkg/moonphase"
	"github.com/trailcam/camtrap-activity/pkg/suncycle"
)

func main() {
	var (
		csvFile = flag.String("csv", "", "Camera-trap CSV export to analyze")

		dbHost = flag.String("db-host", "localhost", "Database host")
		dbPort = flag.Int("db-port", 5432, "Database port")
		dbUser = flag.String("db-user", "postgres", "Database user")
		dbPass = flag.String("db-pass", "", "Database password")
		dbName = flag.String("db-name", "", "Database name (reads observations from Postgres when set)")

		speciesCol = flag.String("species-col", "", "CSV species column name")
		cameraCol  = flag.String("camera-col", "", "CSV camera/station column name")
		dateCol    = flag.String("date-col", "", "CSV date column name")
		timeCol    = flag.String("time-col", "", "CSV time column name")
		dateFormat = flag.String("date-format", "", "CSV date format in Go reference layout")
		lenient    = flag.Bool("lenient", false, "Skip malformed rows instead of aborting")

		bandwidth = flag.Float64("bandwidth", analysis.DefaultBandwidth, "Kernel smoothing multiplier")
		gridSize  = flag.Int("grid", analysis.DefaultGridSize, "Density grid size")
		resamples = flag.Int("resamples", analysis.DefaultResamples, "Bootstrap resamples per species pair")
		seed      = flag.Int64("seed", 0, "Bootstrap RNG seed (0 = wall clock, non-reproducible)")
		minCount  = flag.Int("min-count", 5, "Minimum detections per species to include it")

		lat = flag.Float64("lat", 0, "Site latitude for diel classification")
		lon = flag.Float64("lon", 0, "Site longitude for diel classification")

		outFile = flag.String("out", "", "Write the overlap matrix as CSV to this file")
	)
	flag.Parse()

	observations, err := loadObservations(*csvFile, *dbHost, *dbPort, *dbUser, *dbPass, *dbName, ingest.Options{
		SpeciesColumn: *speciesCol,
		CameraColumn:  *cameraCol,
		DateColumn:    *dateCol,
		TimeColumn:    *timeCol,
		DateFormat:    *dateFormat,
		Lenient:       *lenient,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading observations: %v\n", err)
		os.Exit(1)
	}
	if len(observations) == 0 {
		fmt.Fprintln(os.Stderr, "No observations loaded")
		os.Exit(1)
	}

	samples := ingest.BySpecies(observations)
	for species, angles := range samples {
		if len(angles) < *minCount {
			delete(samples, species)
		}
	}
	if len(samples) == 0 {
		fmt.Fprintf(os.Stderr, "No species with at least %d detections\n", *minCount)
		os.Exit(1)
	}

	service := analysis.New(analysis.Params{
		Bandwidth: *bandwidth,
		GridSize:  *gridSize,
		Resamples: *resamples,
		Seed:      *seed,
	}, nil)
	service.SetSamples(samples)

	sun := studySunTimes(observations, *lat, *lon)
	summaries, err := service.Summarize(sun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error summarizing activity: %v\n", err)
		os.Exit(1)
	}

	printSummaries(summaries, sun, meanMoonlight(observations))

	runID, pairs, err := service.OverlapMatrix(analysis.Params{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing overlap matrix: %v\n", err)
		os.Exit(1)
	}
	printOverlaps(runID, pairs, *seed)

	if *outFile != "" {
		if err := writeOverlapCSV(*outFile, pairs); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *outFile, err)
			os.Exit(1)
		}
		fmt.Printf("\nOverlap matrix written to %s\n", *outFile)
	}
}

func loadObservations(csvFile, host string, port int, user, pass, name string, opts ingest.Options) ([]types.Observation, error) {
	if csvFile != "" {
		f, err := os.Open(csvFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		observations, stats, err := ingest.ReadCSV(f, opts)
		if err != nil {
			return nil, err
		}
		if stats.Skipped > 0 {
			fmt.Fprintf(os.Stderr, "Warning: skipped %d malformed rows\n", stats.Skipped)
		}
		return observations, nil
	}

	if name == "" {
		return nil, fmt.Errorf("either -csv or -db-name is required")
	}

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, pass, name)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT species, camera, time FROM observations ORDER BY time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []types.Observation
	for rows.Next() {
		var obs types.Observation
		var camera sql.NullString
		if err := rows.Scan(&obs.Species, &camera, &obs.Timestamp); err != nil {
			return nil, err
		}
		// The circular coordinate is derived from the timestamp rather
		// than trusted from the table.
		obs.Angle = circular.FromTime(obs.Timestamp)
		if camera.Valid {
			obs.Camera = camera.String
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

// studySunTimes computes sun times at the midpoint of the study period.
// Without coordinates there is no diel classification.
func studySunTimes(observations []types.Observation, lat, lon float64) *suncycle.SunTimes {
	if lat == 0 && lon == 0 {
		return nil
	}

	times := make([]time.Time, len(observations))
	for i, obs := range observations {
		times[i] = obs.Timestamp
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	mid := times[len(times)/2]

	st := suncycle.Times(mid, lat, lon)
	return &st
}

// meanMoonlight returns each species' mean lunar illumination across its
// detections. High values for a nocturnal species suggest tolerance of
// moonlit nights.
func meanMoonlight(observations []types.Observation) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, obs := range observations {
		sums[obs.Species] += moonphase.Calculate(obs.Timestamp).Illumination
		counts[obs.Species]++
	}

	means := make(map[string]float64, len(sums))
	for species, sum := range sums {
		means[species] = sum / float64(counts[species])
	}
	return means
}

func printSummaries(summaries []types.SpeciesSummary, sun *suncycle.SunTimes, moonlight map[string]float64) {
	fmt.Println("=== Daily Activity Summary ===")
	fmt.Println()
	fmt.Printf("%-25s %6s %10s %8s %12s %12s %6s\n",
		"Species", "N", "Mean time", "R̄", "Rayleigh p", "Diel class", "Moon")
	for _, s := range summaries {
		diel := s.DielClass
		if sun == nil {
			diel = "-"
		}
		fmt.Printf("%-25s %6d %10s %8.3f %12.2g %12s %6.2f\n",
			s.Species, s.Count, s.MeanTime, s.MeanResultant, s.RayleighP, diel, moonlight[s.Species])
	}
}

func printOverlaps(runID string, pairs []types.SpeciesPairOverlap, seed int64) {
	fmt.Println()
	fmt.Printf("=== Pairwise Activity Overlap (run %s) ===\n", runID)
	if seed == 0 {
		fmt.Println("Note: unseeded bootstrap; CI bounds vary between runs")
	}
	fmt.Println()
	fmt.Printf("%-25s %-25s %9s %9s %9s\n", "Species A", "Species B", "Overlap", "CI low", "CI high")
	for _, p := range pairs {
		fmt.Printf("%-25s %-25s %9.3f %9.3f %9.3f\n",
			p.SpeciesA, p.SpeciesB, p.Overlap, p.CILow, p.CIHigh)
	}
}

func writeOverlapCSV(path string, pairs []types.SpeciesPairOverlap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"species_a", "species_b", "overlap", "ci_low", "ci_high"}); err != nil {
		return err
	}
	for _, p := range pairs {
		record := []string{
			p.SpeciesA,
			p.SpeciesB,
			fmt.Sprintf("%.4f", p.Overlap),
			fmt.Sprintf("%.4f", p.CILow),
			fmt.Sprintf("%.4f", p.CIHigh),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
