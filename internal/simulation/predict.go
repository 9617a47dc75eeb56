package simulation

import (
	"context"
	"fmt"
	mathrand "math/rand/v2"
	"strings"
)

const predictSystemTemplate = `You are an environmental data expert analyzing how a scenario affects different locations.
SCENARIO: %s
METRIC: %s

Your task is to predict the new %s value for each location under this scenario. Consider:
- Local characteristics (urban/rural, industry, geography)
- Current pollution levels
- How the scenario would specifically affect that location
- Population density and local economy
- Realistic environmental science principles

IMPORTANT: Your predicted values should be scientifically realistic and logically consistent:
- If the scenario reduces pollution sources, values should be LOWER than current
- If the scenario increases pollution sources, values should be HIGHER than current
- Consider the magnitude of change based on local impact

Return ONLY a JSON object with location names as keys and predicted values as values:
{"King": 18.5, "Adams": 2.2, "Benton": 6.3}`

// NoiseSource supplies standard-normal draws for the arithmetic strategy.
// Injectable so tests can pin it; the default draws fresh entropy and is
// safe for concurrent use.
type NoiseSource interface {
	NormFloat64() float64
}

// globalNoise delegates to math/rand/v2's top-level generator, which is
// safe for concurrent use without locking.
type globalNoise struct{}

func (globalNoise) NormFloat64() float64 { return mathrand.NormFloat64() }

// PredictionEngine computes a predicted value per location entity, either
// by delegating one batched request to the semantic generation service or
// via the deterministic density-tiered arithmetic fallback. Output is not
// reproducible across calls unless the noise source is pinned: the
// Gaussian term models real-world variance on purpose.
type PredictionEngine struct {
	caller LLMCaller
	noise  NoiseSource
}

func NewPredictionEngine(caller LLMCaller, noise NoiseSource) *PredictionEngine {
	if noise == nil {
		noise = globalNoise{}
	}
	return &PredictionEngine{caller: caller, noise: noise}
}

// Predict returns one data point per entity, in input order. A service
// failure is never fatal: it triggers the arithmetic fallback. An empty
// entity set returns an empty (non-nil) slice.
func (e *PredictionEngine) Predict(ctx context.Context, spec ScenarioSpecification, entities []LocationEntity) []PredictedDataPoint {
	points := make([]PredictedDataPoint, 0, len(entities))
	if len(entities) == 0 {
		return points
	}

	var predictions map[string]float64
	// Explicit tier factors make the spec self-sufficient; skip the
	// service round trip entirely.
	if spec.DensityFactors != nil || e.caller == nil {
		predictions = e.arithmetic(spec, entities)
	} else {
		delegated, err := e.delegate(ctx, spec, entities)
		if err != nil {
			predictions = e.arithmetic(spec, entities)
		} else {
			predictions = delegated
		}
	}

	for _, ent := range entities {
		predicted, ok := predictions[ent.Name]
		if !ok {
			// The service omitted this entity; no inferable change.
			predicted = ent.GroundTruth
		}
		predicted = clampNonNegative(predicted)
		points = append(points, PredictedDataPoint{
			Name:             ent.Name,
			Lat:              ent.Lat,
			Lon:              ent.Lon,
			Seat:             ent.Seat,
			Density:          ent.Density,
			GroundTruthValue: ent.GroundTruth,
			ScenarioFactor:   scenarioFactor(predicted, ent.GroundTruth),
			PredictedValue:   predicted,
		})
	}
	return points
}

// delegate batches all entities into a single request so service calls
// stay O(1) per simulation rather than O(n).
func (e *PredictionEngine) delegate(ctx context.Context, spec ScenarioSpecification, entities []LocationEntity) (map[string]float64, error) {
	system := fmt.Sprintf(predictSystemTemplate, spec.ScenarioDescription, spec.TargetMetric, spec.TargetMetric)

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these locations and predict their new %s values under the scenario.\n", spec.TargetMetric)
	if len(spec.ScalingRules) > 0 {
		b.WriteString("Apply these scaling rules:\n")
		for _, r := range spec.ScalingRules {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	b.WriteString("\n")
	for _, ent := range entities {
		fmt.Fprintf(&b, "Location: %s\nSeat: %s\nPopulation Density: %d people/sq mi\nCurrent %s: %g %s\nCoordinates: %.4f, %.4f\n\n",
			ent.Name, ent.Seat, ent.Density, spec.TargetMetric, ent.GroundTruth, spec.Unit, ent.Lat, ent.Lon)
	}
	b.WriteString("Return a JSON object with location names as keys and predicted values as values.")

	raw, err := e.caller.GenerateJSON(ctx, system, b.String())
	if err != nil {
		return nil, err
	}
	var predictions map[string]float64
	if err := decodeJSON(raw, &predictions); err != nil {
		return nil, err
	}
	return predictions, nil
}

// arithmetic applies the density-tiered factors plus zero-mean Gaussian
// noise. Spec-supplied factors win; otherwise DefaultTierFactors.
func (e *PredictionEngine) arithmetic(spec ScenarioSpecification, entities []LocationEntity) map[string]float64 {
	factors := DefaultTierFactors
	if spec.DensityFactors != nil {
		factors = *spec.DensityFactors
	}
	out := make(map[string]float64, len(entities))
	for _, ent := range entities {
		f := factors.For(TierFor(ent.Density))
		out[ent.Name] = ent.GroundTruth*f + spec.StandardDeviation*e.noise.NormFloat64()
	}
	return out
}

func scenarioFactor(predicted, groundTruth float64) float64 {
	if groundTruth > 0 {
		return predicted / groundTruth
	}
	return 1.0
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
