package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/trailcam/camtrap-activity/internal/analysis"
	"github.com/trailcam/camtrap-activity/pkg/circular"
	"github.com/trailcam/camtrap-activity/pkg/moonphase"
	"github.com/trailcam/camtrap-activity/pkg/responseformat"
	"github.com/trailcam/camtrap-activity/pkg/suncycle"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// siteLocation resolves the configured site timezone, falling back to UTC.
func (h *Handlers) siteLocation() *time.Location {
	if h.controller.site.Timezone != "" {
		if loc, err := time.LoadLocation(h.controller.site.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// sunTimes computes today's sun times for the configured site.
func (h *Handlers) sunTimes() *suncycle.SunTimes {
	now := time.Now().In(h.siteLocation())
	st := suncycle.Times(now, h.controller.site.Latitude, h.controller.site.Longitude)
	return &st
}

// writeAnalysisError maps pipeline errors onto HTTP statuses.
func (h *Handlers) writeAnalysisError(w http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, analysis.ErrUnknownSpecies):
		h.formatter.WriteError(w, req, http.StatusNotFound, err.Error())
	case errors.Is(err, circular.ErrInvalidParameter),
		errors.Is(err, circular.ErrInvalidTime),
		errors.Is(err, circular.ErrEmptySample):
		h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
	default:
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err.Error())
	}
}

// GetSpecies returns the per-species activity summaries
func (h *Handlers) GetSpecies(w http.ResponseWriter, req *http.Request) {
	summaries, err := h.controller.service.Summarize(h.sunTimes())
	if err != nil {
		h.writeAnalysisError(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, summaries)
}

// GetActivity returns the density curve of one species. Optional query
// parameters: bandwidth (float), points (grid size).
func (h *Handlers) GetActivity(w http.ResponseWriter, req *http.Request) {
	species := mux.Vars(req)["species"]

	bandwidth, ok := h.floatParam(w, req, "bandwidth", 0)
	if !ok {
		return
	}
	points, ok := h.intParam(w, req, "points", 0)
	if !ok {
		return
	}

	curve, err := h.controller.service.Density(species, bandwidth, points)
	if err != nil {
		h.writeAnalysisError(w, req, err)
		return
	}

	h.formatter.WriteResponse(w, req, map[string]any{
		"species": species,
		"curve":   curve,
	})
}

// GetOverlap returns the overlap coefficient and bootstrap CI for a
// species pair. Optional query parameters: bandwidth, resamples, seed.
func (h *Handlers) GetOverlap(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	bandwidth, ok := h.floatParam(w, req, "bandwidth", 0)
	if !ok {
		return
	}
	resamples, ok := h.intParam(w, req, "resamples", 0)
	if !ok {
		return
	}
	seed, ok := h.intParam(w, req, "seed", 0)
	if !ok {
		return
	}

	pair, err := h.controller.service.Overlap(vars["speciesA"], vars["speciesB"], analysis.Params{
		Bandwidth: bandwidth,
		Resamples: resamples,
		Seed:      int64(seed),
	})
	if err != nil {
		h.writeAnalysisError(w, req, err)
		return
	}
	h.formatter.WriteResponse(w, req, pair)
}

// GetSunCycle returns sunrise/sunset for the site. Optional query
// parameter: date (YYYY-MM-DD), defaulting to today.
func (h *Handlers) GetSunCycle(w http.ResponseWriter, req *http.Request) {
	loc := h.siteLocation()
	date := time.Now().In(loc)

	if d := req.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, loc)
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	st := suncycle.Times(date, h.controller.site.Latitude, h.controller.site.Longitude)
	h.formatter.WriteResponse(w, req, map[string]any{
		"date": date.Format("2006-01-02"),
		"site": h.controller.site.Name,
		"sun":  st,
		"moon": moonphase.Calculate(date),
	})
}

// GetHealth returns a minimal liveness payload
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]any{
		"status":  "ok",
		"species": len(h.controller.service.Species()),
	})
}

func (h *Handlers) floatParam(w http.ResponseWriter, req *http.Request, name string, fallback float64) (float64, bool) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func (h *Handlers) intParam(w http.ResponseWriter, req *http.Request, name string, fallback int) (int, bool) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}
