// Package schema holds the closed set of environmental metrics the
// simulation service understands, the canonical unit for each metric, and
// the location-dataset column carrying that metric's baseline values.
package schema

type Metric string

const (
	MetricNO2  Metric = "NO2"
	MetricPM25 Metric = "PM2.5"
	MetricGWP  Metric = "GWP"
	MetricAQI  Metric = "AQI"
)

type Unit string

const (
	UnitPPB          Unit = "ppb"
	UnitMicrogramsM3 Unit = "μg/m³"
	UnitKgCO2e       Unit = "kg CO2e/m²"
	UnitNone         Unit = "NA"
)

var metricUnits = map[Metric]Unit{
	MetricNO2:  UnitPPB,
	MetricPM25: UnitMicrogramsM3,
	MetricGWP:  UnitKgCO2e,
	MetricAQI:  UnitNone,
}

// Dataset column names match the source CSV headers exactly, including the
// unbalanced parenthesis in the GWP column.
var metricColumns = map[Metric]string{
	MetricNO2:  "NO2 Avg. (ppb)",
	MetricPM25: "PM2.5 Avg. (µg/m³)",
	MetricGWP:  "GWP (CO2e per capita",
	MetricAQI:  "Annual Avg. AQI (0-500)",
}

// Metrics returns the recognized metrics in a stable order.
func Metrics() []Metric {
	return []Metric{MetricNO2, MetricPM25, MetricGWP, MetricAQI}
}

// UnitFor returns the canonical unit for a metric.
func UnitFor(m Metric) (Unit, bool) {
	u, ok := metricUnits[m]
	return u, ok
}

// ValidPair reports whether unit is the canonical unit for metric.
func ValidPair(m Metric, u Unit) bool {
	want, ok := metricUnits[m]
	return ok && want == u
}

// Column returns the dataset column holding ground-truth values for a metric.
func Column(m Metric) (string, bool) {
	c, ok := metricColumns[m]
	return c, ok
}

// ParseMetric matches a raw string against the recognized metric set.
func ParseMetric(s string) (Metric, bool) {
	m := Metric(s)
	_, ok := metricUnits[m]
	return m, ok
}
