package simulation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// BuildReportMarkdown renders a simulation result (and optional per-entity
// insights) as a markdown report suitable for PDF export.
func BuildReportMarkdown(result SimulationResult, insights map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Environmental Scenario Simulation Report\n\n")
	fmt.Fprintf(&b, "- Metric: %s (%s)\n", result.Metric, result.Unit)
	fmt.Fprintf(&b, "- Locations: %d\n", len(result.DataPoints))
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))

	fmt.Fprintf(&b, "## Scenario\n\n%s\n\n", sanitizeLine(result.ScenarioDescription))

	fmt.Fprintf(&b, "## Baseline Summary\n\n")
	fmt.Fprintf(&b, "| Min | Max | Average |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| %.2f | %.2f | %.2f |\n\n", result.Baseline.Min, result.Baseline.Max, result.Baseline.Average)

	fmt.Fprintf(&b, "## Predicted Values\n\n")
	fmt.Fprintf(&b, "| Location | Seat | Density | Baseline | Predicted | Factor | Normalized |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|---|\n")
	for _, p := range result.DataPoints {
		fmt.Fprintf(&b, "| %s | %s | %d | %.2f | %.2f | %.4fx | %.3f |\n",
			p.Name, p.Seat, p.Density, p.GroundTruthValue, p.PredictedValue, p.ScenarioFactor, p.Normalized)
	}
	b.WriteString("\n")

	if len(insights) > 0 {
		fmt.Fprintf(&b, "## Location Insights\n\n")
		for _, name := range sortedKeys(insights) {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", name, sanitizeLine(insights[name]))
		}
	}

	fmt.Fprintf(&b, "## Appendix\n\n### Result (JSON)\n\n```json\n%s\n```\n", prettyJSON(result))
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func sanitizeLine(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "-"
	}
	return s
}
