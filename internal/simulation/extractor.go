package simulation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joelkehle/envsim/internal/schema"
)

const extractorSystemPrompt = "You are a Data Simulation Director specializing in environmental data engineering. " +
	"Your primary and sole task is to take a client's request (User Prompt) and convert it into " +
	"a highly structured, technical specification suitable for immediate execution by a " +
	"synthetic data generation system. Respond with strict JSON only."

const fallbackDescription = "Default scenario"

// SpecificationExtractor converts an accepted prompt into a validated
// ScenarioSpecification. The caller is responsible for running the
// relevance gate first; the extractor does not re-check.
type SpecificationExtractor struct {
	caller  LLMCaller
	variant SpecVariant
}

func NewSpecificationExtractor(caller LLMCaller, variant SpecVariant) *SpecificationExtractor {
	if variant == "" {
		variant = VariantDensityFactors
	}
	return &SpecificationExtractor{caller: caller, variant: variant}
}

// Extract is validate-or-degrade, never validate-or-crash: a parseable
// response with invalid fields is repaired to heuristic defaults; only a
// response that is not JSON at all (or a failed service call, which leaves
// nothing to degrade to) becomes an InvalidSpecification error. The
// service call is never retried.
func (e *SpecificationExtractor) Extract(ctx context.Context, prompt string) (ScenarioSpecification, error) {
	if e.caller == nil {
		return ScenarioSpecification{}, invalidSpecificationError(fmt.Errorf("semantic generation service not configured"))
	}
	raw, err := e.caller.GenerateJSON(ctx, extractorSystemPrompt, e.buildPrompt(prompt))
	if err != nil {
		return ScenarioSpecification{}, invalidSpecificationError(
			fmt.Errorf("generation service call failed (%s): %w", classifyTransportError(err), err))
	}

	var spec ScenarioSpecification
	if err := decodeJSON(raw, &spec); err != nil {
		return ScenarioSpecification{}, invalidSpecificationError(fmt.Errorf("response was not valid JSON: %w", err))
	}
	// The service sometimes volunteers the other variant's field set; drop
	// it so the spec cannot flip variants behind the configuration.
	switch e.variant {
	case VariantScalingRules:
		spec.DensityFactors = nil
	default:
		spec.ScalingRules = nil
	}
	if err := spec.Validate(); err != nil {
		repairSpec(&spec)
		if err2 := spec.Validate(); err2 != nil {
			return ScenarioSpecification{}, invalidSpecificationError(err2)
		}
	}
	return spec, nil
}

func (e *SpecificationExtractor) buildPrompt(prompt string) string {
	var b strings.Builder
	b.WriteString("Analyze the user prompt and extract the following information:\n")
	b.WriteString("1. Target Metric: Choose from: NO2, PM2.5, GWP, AQI\n")
	b.WriteString("2. Unit: Use the standard unit for each metric:\n")
	for _, m := range schema.Metrics() {
		u, _ := schema.UnitFor(m)
		fmt.Fprintf(&b, "   - %s: %s\n", m, u)
	}
	b.WriteString("3. Timeframe: Target year (assume next year if not specified)\n")
	b.WriteString("4. Standard Deviation: Variation amount for randomness (typically 1-5)\n")
	fmt.Fprintf(&b, "5. Description: Brief summary of the scenario (%d-%d characters)\n\n", MinDescriptionChars, MaxDescriptionChars)

	b.WriteString("Return ONLY a valid JSON object with these exact fields:\n")
	b.WriteString("- target_metric: string (from the list above)\n")
	b.WriteString("- unit: string (compatible with the metric)\n")
	b.WriteString("- target_timeframe: string\n")
	b.WriteString("- standard_deviation: number (>= 0)\n")
	fmt.Fprintf(&b, "- scenario_description: string (%d-%d characters)\n", MinDescriptionChars, MaxDescriptionChars)

	switch e.variant {
	case VariantScalingRules:
		fmt.Fprintf(&b, "- scaling_rules: list of at least %d concrete, quantifiable rules describing how intensity varies spatially (e.g., '1.5x increase in the urban center') or temporally (e.g., 'amounts decrease 20%% in the last week')\n", MinScalingRules)
	default:
		b.WriteString("- density_factors: object with positive multipliers {\"urban\": number, \"suburban\": number, \"rural\": number} describing how the scenario scales baseline values per density tier (e.g., 0.6 for a 40% reduction); omit if the scenario gives no basis for tiered scaling\n")
	}

	b.WriteString("\nUser Prompt: ")
	b.WriteString(prompt)
	return b.String()
}

// repairSpec fills heuristic defaults for individually invalid fields so a
// partially usable response still drives a simulation. Scaling rules are
// not repairable: inventing spatial rules would fabricate semantics.
func repairSpec(spec *ScenarioSpecification) {
	if _, ok := schema.ParseMetric(string(spec.TargetMetric)); !ok {
		spec.TargetMetric = schema.MetricNO2
	}
	if !schema.ValidPair(spec.TargetMetric, spec.Unit) {
		u, _ := schema.UnitFor(spec.TargetMetric)
		spec.Unit = u
	}
	if spec.StandardDeviation < 0 {
		spec.StandardDeviation = 2.0
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(spec.ScenarioDescription)); n < MinDescriptionChars {
		spec.ScenarioDescription = fallbackDescription
	} else if n > MaxDescriptionChars {
		spec.ScenarioDescription = truncateRunes(spec.ScenarioDescription, MaxDescriptionChars)
	}
	if spec.DensityFactors != nil {
		if f := spec.DensityFactors; f.Urban <= 0 || f.Suburban <= 0 || f.Rural <= 0 {
			spec.DensityFactors = nil
		}
	}
	if spec.DensityFactors != nil && len(spec.ScalingRules) > 0 {
		spec.ScalingRules = nil
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
