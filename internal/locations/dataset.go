// Package locations loads the read-only location dataset the simulation
// pipeline draws its entities and ground-truth baselines from. Two
// interchangeable sources exist: the original CSV file and a SQLite
// snapshot of it. The dataset is loaded once and never mutated, so
// unsynchronized concurrent reads are safe.
package locations

import (
	"github.com/joelkehle/envsim/internal/schema"
	"github.com/joelkehle/envsim/internal/simulation"
)

type row struct {
	Name    string
	Seat    string
	Lat     float64
	Lon     float64
	Density int
	// Baselines holds per-metric ground-truth values; a metric absent
	// from the map was missing or invalid for this row.
	Baselines map[schema.Metric]float64
}

// Dataset is an immutable in-memory copy of the location table.
type Dataset struct {
	rows []row
	// metrics records which metric columns the source actually carried.
	metrics map[schema.Metric]bool
}

// Len reports the number of usable rows.
func (d *Dataset) Len() int { return len(d.rows) }

// HasMetric reports whether the source carried a column for the metric.
func (d *Dataset) HasMetric(m schema.Metric) bool { return d.metrics[m] }

// EntitiesFor resolves the entity set for a metric, preserving source row
// order. A metric the source has no column for is a configuration error
// (KindDataFormat). Rows whose baseline for the metric is missing or
// negative are excluded, not errored.
func (d *Dataset) EntitiesFor(m schema.Metric) ([]simulation.LocationEntity, error) {
	col, ok := schema.Column(m)
	if !ok {
		return nil, simulation.DataFormatError("unrecognized metric "+string(m), nil)
	}
	if !d.metrics[m] {
		return nil, simulation.DataFormatError("location dataset has no column "+col+" for metric "+string(m), nil)
	}
	entities := make([]simulation.LocationEntity, 0, len(d.rows))
	for _, r := range d.rows {
		baseline, ok := r.Baselines[m]
		if !ok || baseline < 0 {
			continue
		}
		entities = append(entities, simulation.LocationEntity{
			Name:        r.Name,
			Seat:        r.Seat,
			Lat:         r.Lat,
			Lon:         r.Lon,
			Density:     r.Density,
			GroundTruth: baseline,
		})
	}
	return entities, nil
}

// Source returns the dataset as a simulation.EntitySource.
func (d *Dataset) Source() simulation.EntitySource {
	return d.EntitiesFor
}
