package simulation

import (
	"strings"
	"testing"
)

func TestBuildReportMarkdownSections(t *testing.T) {
	md := BuildReportMarkdown(sampleResult(), map[string]string{
		"King":     "Urban core sees the largest drop.",
		"Garfield": "Rural baseline barely moves.",
	})

	for _, want := range []string{
		"# Environmental Scenario Simulation Report",
		"## Scenario",
		"## Baseline Summary",
		"## Predicted Values",
		"## Location Insights",
		"## Appendix",
		"| King |",
		"| Garfield |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// Insights sort alphabetically regardless of map order.
	if strings.Index(md, "### Garfield") > strings.Index(md, "### King") {
		t.Error("insights should be sorted by location name")
	}
}

func TestBuildReportMarkdownWithoutInsights(t *testing.T) {
	md := BuildReportMarkdown(sampleResult(), nil)
	if strings.Contains(md, "## Location Insights") {
		t.Error("insights section should be omitted when empty")
	}
	if !strings.Contains(md, "```json") {
		t.Error("appendix JSON block missing")
	}
}

func TestSanitizeLine(t *testing.T) {
	if got := sanitizeLine("a\nb"); got != "a b" {
		t.Errorf("got %q", got)
	}
	if got := sanitizeLine("  "); got != "-" {
		t.Errorf("got %q", got)
	}
}
