package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/trailcam/camtrap-activity/internal/analysis"
	"github.com/trailcam/camtrap-activity/internal/types"
	"github.com/trailcam/camtrap-activity/pkg/config"
)

func testController(t *testing.T) *Controller {
	t.Helper()

	hours := func(hs ...float64) []float64 {
		angles := make([]float64, len(hs))
		for i, h := range hs {
			angles[i] = h / 24.0 * 2 * math.Pi
		}
		return angles
	}

	service := analysis.New(analysis.Params{Resamples: 50, Seed: 5}, nil)
	service.SetSamples(map[string][]float64{
		"Red Fox":  hours(22, 23, 0.5, 1, 2, 3),
		"Roe Deer": hours(9, 10, 11, 13, 14, 15),
	})

	cfg := &config.Data{
		Site: config.SiteData{Name: "Test Forest", Latitude: 48.0, Longitude: 11.0},
	}

	var wg sync.WaitGroup
	ctrl, err := NewController(context.Background(), &wg, cfg, service, nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return ctrl
}

func get(t *testing.T, ctrl *Controller, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestGetSpecies(t *testing.T) {
	ctrl := testController(t)
	rec := get(t, ctrl, "/api/species")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var summaries []types.SpeciesSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, expected 2", len(summaries))
	}
	if summaries[0].Species != "Red Fox" || summaries[1].Species != "Roe Deer" {
		t.Errorf("unexpected species order: %q, %q", summaries[0].Species, summaries[1].Species)
	}
	if summaries[0].Count != 6 {
		t.Errorf("fox count = %d, expected 6", summaries[0].Count)
	}
}

func TestGetActivity(t *testing.T) {
	ctrl := testController(t)
	rec := get(t, ctrl, "/api/activity/Red%20Fox?points=128")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200, body %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Species string `json:"species"`
		Curve   struct {
			Theta   []float64 `json:"theta"`
			Density []float64 `json:"density"`
		} `json:"curve"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if payload.Species != "Red Fox" {
		t.Errorf("species = %q", payload.Species)
	}
	if len(payload.Curve.Theta) != 128 || len(payload.Curve.Density) != 128 {
		t.Errorf("grid sizes = %d/%d, expected 128", len(payload.Curve.Theta), len(payload.Curve.Density))
	}

	var integral float64
	for _, v := range payload.Curve.Density {
		integral += v
	}
	integral *= 2 * math.Pi / 128
	if math.Abs(integral-1) > 1e-3 {
		t.Errorf("density integral = %v, expected 1", integral)
	}
}

func TestGetActivityUnknownSpecies(t *testing.T) {
	ctrl := testController(t)
	rec := get(t, ctrl, "/api/activity/Wolverine")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
}

func TestGetActivityBadBandwidth(t *testing.T) {
	ctrl := testController(t)

	if rec := get(t, ctrl, "/api/activity/Red%20Fox?bandwidth=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("unparseable bandwidth: status = %d, expected 400", rec.Code)
	}
	if rec := get(t, ctrl, "/api/activity/Red%20Fox?bandwidth=-1"); rec.Code != http.StatusBadRequest {
		t.Errorf("negative bandwidth: status = %d, expected 400", rec.Code)
	}
}

func TestGetOverlap(t *testing.T) {
	ctrl := testController(t)
	rec := get(t, ctrl, "/api/overlap/Red%20Fox/Roe%20Deer?resamples=50&seed=9")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200, body %s", rec.Code, rec.Body.String())
	}

	var pair types.SpeciesPairOverlap
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if pair.Overlap < 0 || pair.Overlap > 1 {
		t.Errorf("overlap = %v, outside [0,1]", pair.Overlap)
	}
	if pair.CILow < 0 || pair.CIHigh > 1 || pair.CILow > pair.CIHigh {
		t.Errorf("bad CI [%v, %v]", pair.CILow, pair.CIHigh)
	}
}

func TestGetSunCycle(t *testing.T) {
	ctrl := testController(t)
	rec := get(t, ctrl, "/api/suncycle?date=2024-06-20")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200, body %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Date string `json:"date"`
		Site string `json:"site"`
		Sun  struct {
			SunriseMinutes float64 `json:"sunrise_minutes"`
			SunsetMinutes  float64 `json:"sunset_minutes"`
		} `json:"sun"`
		Moon struct {
			Illumination float64 `json:"illumination"`
			Name         string  `json:"name"`
		} `json:"moon"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if payload.Date != "2024-06-20" || payload.Site != "Test Forest" {
		t.Errorf("payload = %+v", payload)
	}
	// June at 48N: sun rises well before 06:00 UTC and sets after 18:00.
	if payload.Sun.SunriseMinutes <= 0 || payload.Sun.SunriseMinutes > 360 {
		t.Errorf("sunrise = %v minutes, expected early morning", payload.Sun.SunriseMinutes)
	}
	if payload.Sun.SunsetMinutes < 1080 {
		t.Errorf("sunset = %v minutes, expected evening", payload.Sun.SunsetMinutes)
	}

	if payload.Moon.Illumination < 0 || payload.Moon.Illumination > 1 || payload.Moon.Name == "" {
		t.Errorf("moon payload = %+v", payload.Moon)
	}

	if rec := get(t, ctrl, "/api/suncycle?date=garbage"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad date: status = %d, expected 400", rec.Code)
	}
}

func TestGetHealth(t *testing.T) {
	ctrl := testController(t)
	rec := get(t, ctrl, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var payload struct {
		Status  string `json:"status"`
		Species int    `json:"species"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if payload.Status != "ok" || payload.Species != 2 {
		t.Errorf("payload = %+v", payload)
	}
}
