// Package analysis orchestrates the circular-statistics pipeline over a
// set of per-species samples: activity densities, Rayleigh summaries,
// diel classification, and the pairwise overlap matrix.
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trailcam/camtrap-activity/internal/types"
	"github.com/trailcam/camtrap-activity/pkg/circular"
	"github.com/trailcam/camtrap-activity/pkg/suncycle"
)

// ErrUnknownSpecies indicates a species with no loaded observations.
var ErrUnknownSpecies = errors.New("analysis: unknown species")

// Default estimation parameters, matching the conventions of published
// activity-overlap analyses: the data-driven bandwidth unscaled, a
// 512-point grid, and enough resamples for stable percentile bounds.
const (
	DefaultBandwidth = 1.0
	DefaultGridSize  = circular.DefaultGridSize
	DefaultResamples = 500
	DefaultTwilight  = time.Hour
)

// Params are the tunable estimation parameters for one analysis pass.
type Params struct {
	Bandwidth float64
	GridSize  int
	Resamples int
	Seed      int64
}

// WithDefaults fills zero fields with the package defaults.
func (p Params) WithDefaults() Params {
	if p.Bandwidth == 0 {
		p.Bandwidth = DefaultBandwidth
	}
	if p.GridSize == 0 {
		p.GridSize = DefaultGridSize
	}
	if p.Resamples == 0 {
		p.Resamples = DefaultResamples
	}
	return p
}

// Service holds the loaded per-species samples and answers analysis
// queries over them. Samples are replaced wholesale by SetSamples;
// queries never mutate them.
type Service struct {
	mu       sync.RWMutex
	samples  map[string][]float64
	defaults Params
	logger   *zap.SugaredLogger
}

// New creates an analysis service with the given default parameters.
func New(defaults Params, logger *zap.SugaredLogger) *Service {
	return &Service{
		samples:  make(map[string][]float64),
		defaults: defaults.WithDefaults(),
		logger:   logger,
	}
}

// Defaults returns the service's default estimation parameters.
func (s *Service) Defaults() Params {
	return s.defaults
}

// SetSamples replaces the loaded samples.
func (s *Service) SetSamples(samples map[string][]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = samples
}

// LoadObservations replaces the loaded samples with ones grouped from a
// flat observation list.
func (s *Service) LoadObservations(observations []types.Observation) {
	samples := make(map[string][]float64)
	for _, obs := range observations {
		samples[obs.Species] = append(samples[obs.Species], obs.Angle)
	}
	s.SetSamples(samples)
}

// Species returns the loaded species names, sorted.
func (s *Service) Species() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.samples))
	for name := range s.samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sample returns a copy of one species' angles.
func (s *Service) sample(species string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	angles, ok := s.samples[species]
	if !ok || len(angles) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSpecies, species)
	}
	out := make([]float64, len(angles))
	copy(out, angles)
	return out, nil
}

// Density estimates the activity density curve of one species. Zero
// bandwidth or grid size fall back to the service defaults.
func (s *Service) Density(species string, bandwidth float64, gridSize int) (*circular.DensityCurve, error) {
	angles, err := s.sample(species)
	if err != nil {
		return nil, err
	}
	if bandwidth == 0 {
		bandwidth = s.defaults.Bandwidth
	}
	if gridSize == 0 {
		gridSize = s.defaults.GridSize
	}
	return circular.Estimate(angles, bandwidth, gridSize)
}

// Summarize computes the per-species activity summary. When sun is
// non-nil, observations are also classified into diel periods for the
// nocturnality fraction and diel class.
func (s *Service) Summarize(sun *suncycle.SunTimes) ([]types.SpeciesSummary, error) {
	summaries := make([]types.SpeciesSummary, 0)

	for _, species := range s.Species() {
		angles, err := s.sample(species)
		if err != nil {
			return nil, err
		}

		rayleigh, err := circular.RayleighTest(angles)
		if err != nil {
			return nil, fmt.Errorf("rayleigh test for %q: %w", species, err)
		}

		summary := types.SpeciesSummary{
			Species:       species,
			Count:         len(angles),
			MeanTime:      circular.ClockString(rayleigh.MeanDirection),
			MeanDirection: rayleigh.MeanDirection,
			MeanResultant: rayleigh.MeanResultant,
			RayleighZ:     rayleigh.Z,
			RayleighP:     rayleigh.P,
		}

		if sun != nil {
			breakdown := sun.Breakdown(angles, DefaultTwilight)
			summary.DielClass = breakdown.DielClass()
			summary.NightFraction = breakdown.Night
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// Overlap estimates the activity overlap between two species with a
// bootstrap confidence interval.
func (s *Service) Overlap(speciesA, speciesB string, p Params) (types.SpeciesPairOverlap, error) {
	p = mergeParams(p, s.defaults)

	sampleA, err := s.sample(speciesA)
	if err != nil {
		return types.SpeciesPairOverlap{}, err
	}
	sampleB, err := s.sample(speciesB)
	if err != nil {
		return types.SpeciesPairOverlap{}, err
	}

	result, err := circular.EstimateOverlap(sampleA, sampleB, circular.BootstrapParams{
		Bandwidth: p.Bandwidth,
		GridSize:  p.GridSize,
		Resamples: p.Resamples,
		Seed:      p.Seed,
	})
	if err != nil {
		return types.SpeciesPairOverlap{}, err
	}

	return types.SpeciesPairOverlap{
		SpeciesA: speciesA,
		SpeciesB: speciesB,
		Overlap:  result.Overlap,
		CILow:    result.CILow,
		CIHigh:   result.CIHigh,
	}, nil
}

// OverlapMatrix computes the overlap of every unordered species pair and
// tags the batch with a run ID.
func (s *Service) OverlapMatrix(p Params) (string, []types.SpeciesPairOverlap, error) {
	p = mergeParams(p, s.defaults)
	runID := uuid.NewString()
	species := s.Species()

	var pairs []types.SpeciesPairOverlap
	for i := 0; i < len(species); i++ {
		for j := i + 1; j < len(species); j++ {
			pair, err := s.Overlap(species[i], species[j], p)
			if err != nil {
				return "", nil, fmt.Errorf("overlap %s/%s: %w", species[i], species[j], err)
			}
			pairs = append(pairs, pair)
		}
	}

	if s.logger != nil {
		s.logger.Infow("overlap matrix computed",
			"run_id", runID, "species", len(species), "pairs", len(pairs))
	}
	return runID, pairs, nil
}

func mergeParams(p, defaults Params) Params {
	if p.Bandwidth == 0 {
		p.Bandwidth = defaults.Bandwidth
	}
	if p.GridSize == 0 {
		p.GridSize = defaults.GridSize
	}
	if p.Resamples == 0 {
		p.Resamples = defaults.Resamples
	}
	if p.Seed == 0 {
		p.Seed = defaults.Seed
	}
	return p.WithDefaults()
}
