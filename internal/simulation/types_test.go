package simulation

import (
	"strings"
	"testing"

	"github.com/joelkehle/envsim/internal/schema"
)

func validSpec() ScenarioSpecification {
	return ScenarioSpecification{
		TargetMetric:        schema.MetricNO2,
		Unit:                schema.UnitPPB,
		TargetTimeframe:     "2027",
		StandardDeviation:   2,
		ScenarioDescription: "All passenger vehicles become electric statewide.",
	}
}

func TestValidateAcceptsCanonicalSpec(t *testing.T) {
	if err := validSpec().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsIncompatibleUnit(t *testing.T) {
	s := validSpec()
	s.Unit = schema.UnitKgCO2e
	if err := s.Validate(); err == nil {
		t.Fatal("expected unit/metric mismatch to fail validation")
	}
}

func TestValidateRejectsNegativeStandardDeviation(t *testing.T) {
	s := validSpec()
	s.StandardDeviation = -0.5
	if err := s.Validate(); err == nil {
		t.Fatal("expected negative standard deviation to fail")
	}
}

func TestValidateDescriptionBounds(t *testing.T) {
	s := validSpec()
	s.ScenarioDescription = "too short"
	if err := s.Validate(); err == nil {
		t.Fatal("expected short description to fail")
	}
	s.ScenarioDescription = strings.Repeat("x", MaxDescriptionChars+1)
	if err := s.Validate(); err == nil {
		t.Fatal("expected long description to fail")
	}
}

func TestValidateScalingRules(t *testing.T) {
	s := validSpec()
	s.ScalingRules = []string{"1.5x increase in the urban center"}
	if err := s.Validate(); err == nil {
		t.Fatal("expected one rule to fail")
	}
	s.ScalingRules = []string{"rule one", "rule one"}
	if err := s.Validate(); err == nil {
		t.Fatal("expected duplicate rules to fail")
	}
	s.ScalingRules = []string{"1.5x increase in the urban center", "amounts decrease 20% in the last week"}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsBothRuleSets(t *testing.T) {
	s := validSpec()
	s.DensityFactors = &TierFactors{Urban: 0.6, Suburban: 0.8, Rural: 0.9}
	s.ScalingRules = []string{"rule one", "rule two"}
	if err := s.Validate(); err == nil {
		t.Fatal("expected mutually exclusive fields to fail")
	}
}

func TestValidateRejectsNonPositiveFactors(t *testing.T) {
	s := validSpec()
	s.DensityFactors = &TierFactors{Urban: 0, Suburban: 0.8, Rural: 0.9}
	if err := s.Validate(); err == nil {
		t.Fatal("expected zero factor to fail")
	}
}

func TestTierForIsStrictPartition(t *testing.T) {
	for _, tc := range []struct {
		density int
		want    Tier
	}{
		{0, TierRural},
		{100, TierRural},
		{101, TierSuburban},
		{500, TierSuburban},
		{501, TierUrban},
		{5000, TierUrban},
	} {
		if got := TierFor(tc.density); got != tc.want {
			t.Fatalf("TierFor(%d) = %s, want %s", tc.density, got, tc.want)
		}
	}
}

func TestVariantFollowsPopulatedFields(t *testing.T) {
	s := validSpec()
	if s.Variant() != VariantDensityFactors {
		t.Fatal("default variant should be density factors")
	}
	s.ScalingRules = []string{"rule one", "rule two"}
	if s.Variant() != VariantScalingRules {
		t.Fatal("rules variant expected")
	}
}

func TestClassificationPassedRequiresBoth(t *testing.T) {
	if (ClassificationResult{Relevant: true}).Passed() {
		t.Fatal("relevant alone must not pass")
	}
	if (ClassificationResult{MakesSenseToModel: true}).Passed() {
		t.Fatal("plausible alone must not pass")
	}
	if !(ClassificationResult{Relevant: true, MakesSenseToModel: true}).Passed() {
		t.Fatal("both true must pass")
	}
}
