package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joelkehle/envsim/internal/schema"
	"github.com/joelkehle/envsim/internal/simulation"
)

// fakeSimulator implements Simulator with canned outputs.
type fakeSimulator struct {
	result   simulation.SimulationResult
	err      error
	insights map[string]string
	prompts  []string
}

func (f *fakeSimulator) Simulate(_ context.Context, prompt string, _ simulation.EntitySource) (simulation.SimulationResult, error) {
	f.prompts = append(f.prompts, prompt)
	return f.result, f.err
}

func (f *fakeSimulator) Explain(_ context.Context, _ simulation.SimulationResult) map[string]string {
	return f.insights
}

func noEntities(schema.Metric) ([]simulation.LocationEntity, error) {
	return nil, nil
}

func sampleResult() simulation.SimulationResult {
	return simulation.SimulationResult{
		Metric:              schema.MetricNO2,
		Unit:                schema.UnitPPB,
		ScenarioDescription: "All passenger vehicles become electric statewide.",
		DataPoints: []simulation.PredictedDataPoint{
			{Name: "King", Density: 800, GroundTruthValue: 10, PredictedValue: 6, ScenarioFactor: 0.6, Normalized: 0.5},
		},
		Baseline: simulation.BaselineSummary{Min: 6, Max: 6, Average: 6},
	}
}

func TestSimulateSuccess(t *testing.T) {
	sim := &fakeSimulator{result: sampleResult()}
	srv := NewServer(sim, noEntities)

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`{"prompt": "all cars go electric"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool                        `json:"success"`
		Data    simulation.SimulationResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Data.Metric != schema.MetricNO2 || len(resp.Data.DataPoints) != 1 {
		t.Errorf("data = %+v", resp.Data)
	}
	if len(sim.prompts) != 1 || sim.prompts[0] != "all cars go electric" {
		t.Errorf("prompts = %v", sim.prompts)
	}
}

func TestSimulateEmptyPrompt(t *testing.T) {
	srv := NewServer(&fakeSimulator{}, noEntities)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`{"prompt": "  "}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] != string(simulation.KindInvalidPrompt) {
		t.Errorf("error = %v", resp["error"])
	}
}

func TestSimulateMalformedBody(t *testing.T) {
	srv := NewServer(&fakeSimulator{}, noEntities)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSimulateTypedPipelineError(t *testing.T) {
	sim := &fakeSimulator{err: &simulation.Error{
		Kind:        simulation.KindInvalidPrompt,
		Message:     "This prompt is not related to environmental data simulation.",
		Suggestions: []string{"Try: 'Impact of closing all coal power plants'"},
	}}
	srv := NewServer(sim, noEntities)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`{"prompt": "best pizza"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Error       string   `json:"error"`
		Message     string   `json:"message"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != string(simulation.KindInvalidPrompt) {
		t.Errorf("error = %s", resp.Error)
	}
	if len(resp.Suggestions) != 1 {
		t.Errorf("suggestions = %v", resp.Suggestions)
	}
}

func TestSimulateDataFormatErrorIs500(t *testing.T) {
	sim := &fakeSimulator{err: simulation.DataFormatError("missing column", nil)}
	srv := NewServer(sim, noEntities)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`{"prompt": "all cars go electric"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSimulateMethodNotAllowed(t *testing.T) {
	srv := NewServer(&fakeSimulator{}, noEntities)
	req := httptest.NewRequest(http.MethodGet, "/api/simulate", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestInsights(t *testing.T) {
	sim := &fakeSimulator{insights: map[string]string{"King": "Urban core sees the largest drop."}}
	srv := NewServer(sim, noEntities)

	body, _ := json.Marshal(sampleResult())
	req := httptest.NewRequest(http.MethodPost, "/api/insights", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success  bool              `json:"success"`
		Insights map[string]string `json:"insights"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Insights["King"] == "" {
		t.Errorf("insights = %v", resp.Insights)
	}
}

func TestInsightsRejectsEmptyResult(t *testing.T) {
	srv := NewServer(&fakeSimulator{}, noEntities)
	req := httptest.NewRequest(http.MethodPost, "/api/insights", strings.NewReader(`{"dataPoints": []}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := NewServer(&fakeSimulator{}, noEntities)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status = %q", resp["status"])
	}
}

func TestRoot(t *testing.T) {
	srv := NewServer(&fakeSimulator{}, noEntities)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := NewServer(&fakeSimulator{}, noEntities)
	req := httptest.NewRequest(http.MethodOptions, "/api/simulate", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
