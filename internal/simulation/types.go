package simulation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joelkehle/envsim/internal/schema"
)

const (
	MinDescriptionChars = 10
	MaxDescriptionChars = 500
	MinScalingRules     = 2
)

// SpecVariant selects which spatial-rule field set the extractor requests
// and validates. The density-factor variant drives the deterministic
// arithmetic strategy directly; the scaling-rules variant leaves prediction
// to the delegated strategy.
type SpecVariant string

const (
	VariantDensityFactors SpecVariant = "density_factors"
	VariantScalingRules   SpecVariant = "scaling_rules"
)

// Tier is the urban/suburban/rural classification of a location by
// population density.
type Tier string

const (
	TierUrban    Tier = "urban"
	TierSuburban Tier = "suburban"
	TierRural    Tier = "rural"
)

// TierFor partitions densities into exactly one tier.
func TierFor(density int) Tier {
	switch {
	case density > 500:
		return TierUrban
	case density > 100:
		return TierSuburban
	default:
		return TierRural
	}
}

// TierFactors are per-tier multipliers applied to ground-truth values by
// the arithmetic strategy.
type TierFactors struct {
	Urban    float64 `json:"urban"`
	Suburban float64 `json:"suburban"`
	Rural    float64 `json:"rural"`
}

// DefaultTierFactors encode 40/20/10% reductions for urban/suburban/rural.
// These constants are load-bearing: the fallback path must keep producing
// the same values across releases.
var DefaultTierFactors = TierFactors{Urban: 0.6, Suburban: 0.8, Rural: 0.9}

// For returns the factor for a tier.
func (f TierFactors) For(t Tier) float64 {
	switch t {
	case TierUrban:
		return f.Urban
	case TierSuburban:
		return f.Suburban
	default:
		return f.Rural
	}
}

// ClassificationResult is the relevance gate's judgement of a prompt.
// The gate passes only when both booleans are true.
type ClassificationResult struct {
	Relevant          bool     `json:"relevant"`
	MakesSenseToModel bool     `json:"makes_sense_to_model"`
	Reason            string   `json:"reason"`
	Suggestions       []string `json:"suggestions"`
}

func (c ClassificationResult) Passed() bool {
	return c.Relevant && c.MakesSenseToModel
}

// ScenarioSpecification is the validated structured description of what to
// simulate. Exactly one of DensityFactors or ScalingRules is populated,
// depending on the extractor variant; both may be absent for a
// density-factor spec, in which case DefaultTierFactors apply.
type ScenarioSpecification struct {
	TargetMetric        schema.Metric `json:"target_metric"`
	Unit                schema.Unit   `json:"unit"`
	TargetTimeframe     string        `json:"target_timeframe"`
	StandardDeviation   float64       `json:"standard_deviation"`
	ScenarioDescription string        `json:"scenario_description"`
	DensityFactors      *TierFactors  `json:"density_factors,omitempty"`
	ScalingRules        []string      `json:"scaling_rules,omitempty"`
}

func (s ScenarioSpecification) Variant() SpecVariant {
	if len(s.ScalingRules) > 0 {
		return VariantScalingRules
	}
	return VariantDensityFactors
}

// Validate enforces the invariants a specification must hold before it is
// handed to the prediction engine.
func (s ScenarioSpecification) Validate() error {
	if !schema.ValidPair(s.TargetMetric, s.Unit) {
		return fmt.Errorf("unit %q is not valid for metric %q", s.Unit, s.TargetMetric)
	}
	if s.StandardDeviation < 0 {
		return fmt.Errorf("standard_deviation must be >= 0, got %v", s.StandardDeviation)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(s.ScenarioDescription)); n < MinDescriptionChars || n > MaxDescriptionChars {
		return fmt.Errorf("scenario_description must be %d-%d characters, got %d", MinDescriptionChars, MaxDescriptionChars, n)
	}
	if s.DensityFactors != nil && len(s.ScalingRules) > 0 {
		return fmt.Errorf("density_factors and scaling_rules are mutually exclusive")
	}
	if f := s.DensityFactors; f != nil {
		if f.Urban <= 0 || f.Suburban <= 0 || f.Rural <= 0 {
			return fmt.Errorf("density factors must be positive multipliers")
		}
	}
	if len(s.ScalingRules) > 0 {
		distinct := map[string]bool{}
		for _, r := range s.ScalingRules {
			r = strings.TrimSpace(r)
			if r == "" {
				return fmt.Errorf("scaling rules must be non-empty")
			}
			distinct[r] = true
		}
		if len(distinct) < MinScalingRules {
			return fmt.Errorf("at least %d distinct scaling rules required, got %d", MinScalingRules, len(distinct))
		}
	}
	return nil
}

// LocationEntity is one row of the location dataset with the ground-truth
// baseline for the active metric already resolved. Rows with missing or
// negative baselines are excluded by the dataset loader, not here.
type LocationEntity struct {
	Name        string
	Seat        string
	Lat         float64
	Lon         float64
	Density     int
	GroundTruth float64
}

// EntitySource resolves the entity set for a metric once the extracted
// specification names it. A missing metric column in the backing dataset is
// a configuration error (KindDataFormat).
type EntitySource func(schema.Metric) ([]LocationEntity, error)

// PredictedDataPoint is the per-entity output of the prediction engine.
// PredictedValue is clamped to >= 0 regardless of which strategy produced
// it; Normalized is filled by Normalize.
type PredictedDataPoint struct {
	Name             string  `json:"name"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	Seat             string  `json:"seat"`
	Density          int     `json:"density"`
	GroundTruthValue float64 `json:"ground_truth_value"`
	ScenarioFactor   float64 `json:"scenario_factor"`
	PredictedValue   float64 `json:"predicted_value"`
	Normalized       float64 `json:"normalized"`
}

type BaselineSummary struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// SimulationResult is the full response for one simulated scenario.
// DataPoints preserve the input entity order.
type SimulationResult struct {
	Metric              schema.Metric        `json:"metric"`
	Unit                schema.Unit          `json:"unit"`
	ScenarioDescription string               `json:"scenario_description"`
	DataPoints          []PredictedDataPoint `json:"dataPoints"`
	Baseline            BaselineSummary      `json:"baseline"`
}
