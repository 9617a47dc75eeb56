package simulation

import (
	"context"
	"fmt"
	"math"
	"strings"
)

const insightSystemTemplate = `Persona: You are a Senior Climate Data Scientist and GIS Analyst specializing in the localized impact of environmental scenarios. Your analysis must be technically rigorous and grounded entirely in the numerical data provided.

SCENARIO: %s
METRIC: %s (%s)
BASELINE CONTEXT: Average %s=%.1f %s.

Generate a concise, technical 2-3 sentence insight for each location. The insight must address, in a fluid non-bulleted paragraph:
1. Causal Mechanism: Explain the predicted change by referencing the scenario factor (e.g., 'a 0.9375x factor') and calculating the precise percentage change (e.g., 'a 6.25%% reduction').
2. Explanatory Variables: Correlate the population density or geographic location with the scenario factor to hypothesize a technical reason for the specific impact.
3. Implication: Discuss a real-world, data-driven implication of this change on the location's infrastructure, logistics, or regional economy.

Output Requirement: Return ONLY a JSON object with location names as keys and the insight string as the value. Do NOT use markdown in the JSON values.`

// Thresholds for the fallback trend label, applied to (1 - factor) * 100.
const (
	significantReductionPercent = 10.0
)

// InsightGenerator produces a natural-language explanation per entity from
// a finished simulation result, with a deterministic template fallback
// when the semantic service fails.
type InsightGenerator struct {
	caller LLMCaller
}

func NewInsightGenerator(caller LLMCaller) *InsightGenerator {
	return &InsightGenerator{caller: caller}
}

// Explain never fails: on any service or parse error the entire mapping is
// built from the deterministic template, and entities the service skipped
// are filled from the same template so the mapping is always total.
func (g *InsightGenerator) Explain(ctx context.Context, result SimulationResult) map[string]string {
	if g.caller == nil {
		return fallbackInsights(result)
	}

	system := fmt.Sprintf(insightSystemTemplate,
		result.ScenarioDescription, result.Metric, result.Unit, result.Metric, result.Baseline.Average, result.Unit)

	var b strings.Builder
	b.WriteString("Analyze these locations and provide the required technical insights for each:\n\n")
	for _, p := range result.DataPoints {
		fmt.Fprintf(&b, "Location: %s\nSeat: %s\nPopulation Density: %d people/sq mi\n", p.Name, p.Seat, p.Density)
		fmt.Fprintf(&b, "Ground Truth (Baseline) %s: %.1f %s\n", result.Metric, p.GroundTruthValue, result.Unit)
		fmt.Fprintf(&b, "Predicted %s: %.1f %s\n", result.Metric, p.PredictedValue, result.Unit)
		fmt.Fprintf(&b, "Scenario Factor (Change Ratio): %.4fx (1.0 = no change)\n", p.ScenarioFactor)
		fmt.Fprintf(&b, "Normalized Risk Score: %.4f (0=min, 1=max)\n", p.Normalized)
		fmt.Fprintf(&b, "Coordinates: %.4f, %.4f\n\n", p.Lat, p.Lon)
	}
	b.WriteString("Return a JSON object with location names as keys and the technical insight strings as values.")

	raw, err := g.caller.GenerateJSON(ctx, system, b.String())
	if err != nil {
		return fallbackInsights(result)
	}
	var insights map[string]string
	if err := decodeJSON(raw, &insights); err != nil {
		return fallbackInsights(result)
	}
	// A literal JSON null decodes without error but leaves the map nil.
	if insights == nil {
		return fallbackInsights(result)
	}
	for _, p := range result.DataPoints {
		if strings.TrimSpace(insights[p.Name]) == "" {
			insights[p.Name] = fallbackInsight(result, p)
		}
	}
	return insights
}

func fallbackInsights(result SimulationResult) map[string]string {
	out := make(map[string]string, len(result.DataPoints))
	for _, p := range result.DataPoints {
		out[p.Name] = fallbackInsight(result, p)
	}
	return out
}

func fallbackInsight(result SimulationResult, p PredictedDataPoint) string {
	tier := TierFor(p.Density)
	changePercent := (1 - p.ScenarioFactor) * 100

	var trend string
	switch {
	case changePercent > significantReductionPercent:
		trend = "significant reduction"
	case changePercent >= 0:
		trend = "moderate reduction"
	default:
		trend = "marginal increase"
	}

	return fmt.Sprintf(
		"As a %s area (Density: %d per sq mi), the predicted %s level of %.1f %s represents a %s of %.1f%% from the baseline of %.1f %s (Factor: %.4fx). "+
			"The impact reflects how the scenario scales with local population density and emission sources.",
		tier, p.Density, result.Metric, p.PredictedValue, result.Unit,
		trend, math.Abs(changePercent), p.GroundTruthValue, result.Unit, p.ScenarioFactor,
	)
}
