package schema

import "testing"

func TestUnitFor(t *testing.T) {
	for _, tc := range []struct {
		metric Metric
		want   Unit
	}{
		{MetricNO2, UnitPPB},
		{MetricPM25, UnitMicrogramsM3},
		{MetricGWP, UnitKgCO2e},
		{MetricAQI, UnitNone},
	} {
		got, ok := UnitFor(tc.metric)
		if !ok || got != tc.want {
			t.Fatalf("UnitFor(%s) = %q, %v; want %q", tc.metric, got, ok, tc.want)
		}
	}
	if _, ok := UnitFor(Metric("CO2")); ok {
		t.Fatal("expected unknown metric to miss")
	}
}

func TestValidPairRejectsMismatches(t *testing.T) {
	if !ValidPair(MetricNO2, UnitPPB) {
		t.Fatal("NO2/ppb should be valid")
	}
	if ValidPair(MetricNO2, UnitMicrogramsM3) {
		t.Fatal("NO2/μg/m³ should be invalid")
	}
	if ValidPair(Metric("bogus"), UnitPPB) {
		t.Fatal("unknown metric should be invalid")
	}
}

func TestColumnForEveryMetric(t *testing.T) {
	for _, m := range Metrics() {
		col, ok := Column(m)
		if !ok || col == "" {
			t.Fatalf("Column(%s) missing", m)
		}
	}
}

func TestParseMetric(t *testing.T) {
	if m, ok := ParseMetric("PM2.5"); !ok || m != MetricPM25 {
		t.Fatalf("ParseMetric(PM2.5) = %q, %v", m, ok)
	}
	if _, ok := ParseMetric("pm2.5"); ok {
		t.Fatal("metric matching is case-sensitive")
	}
}
