package locations

import (
	"strings"
	"testing"

	"github.com/joelkehle/envsim/internal/schema"
	"github.com/joelkehle/envsim/internal/simulation"
)

const sampleCSV = `County Name,County Seat,Latitude,Longitude,Pop. Density,NO2 Avg. (ppb),PM2.5 Avg. (µg/m³)
King,Seattle,47.6062,-122.3321,1100,18.5,8.2
Spokane,Spokane,47.6588,-117.4260,320,12.0,6.1
Garfield,Pomeroy,46.4735,-117.6051,3,4.2,-1
Broken,,not-a-number,-117.0,50,9.9,5.0
`

func TestParseCSV(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	// The row with an unparseable latitude is skipped, not fatal.
	if ds.Len() != 3 {
		t.Fatalf("rows = %d, want 3", ds.Len())
	}
	if !ds.HasMetric(schema.MetricNO2) || !ds.HasMetric(schema.MetricPM25) {
		t.Error("present metric columns should be recorded")
	}
	if ds.HasMetric(schema.MetricGWP) {
		t.Error("absent metric columns should not be recorded")
	}
}

func TestEntitiesForPreservesOrder(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	entities, err := ds.EntitiesFor(schema.MetricNO2)
	if err != nil {
		t.Fatalf("EntitiesFor: %v", err)
	}
	if len(entities) != 3 {
		t.Fatalf("entities = %d, want 3", len(entities))
	}
	for i, want := range []string{"King", "Spokane", "Garfield"} {
		if entities[i].Name != want {
			t.Errorf("entities[%d] = %s, want %s", i, entities[i].Name, want)
		}
	}
	if entities[0].GroundTruth != 18.5 || entities[0].Density != 1100 {
		t.Errorf("King = %+v", entities[0])
	}
}

func TestEntitiesForExcludesInvalidBaselines(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	// Garfield's PM2.5 value is negative and must be excluded.
	entities, err := ds.EntitiesFor(schema.MetricPM25)
	if err != nil {
		t.Fatalf("EntitiesFor: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(entities))
	}
	for _, e := range entities {
		if e.Name == "Garfield" {
			t.Error("negative baseline row should be excluded")
		}
	}
}

func TestEntitiesForMissingMetricColumn(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	_, err = ds.EntitiesFor(schema.MetricGWP)
	if simulation.KindOf(err) != simulation.KindDataFormat {
		t.Fatalf("expected DATA_FORMAT_ERROR, got %v", err)
	}
}

func TestParseCSVMissingRequiredColumn(t *testing.T) {
	csvData := "County Name,Latitude,Longitude\nKing,47.6,-122.3\n"
	_, err := ParseCSV(strings.NewReader(csvData))
	if simulation.KindOf(err) != simulation.KindDataFormat {
		t.Fatalf("expected DATA_FORMAT_ERROR, got %v", err)
	}
}

func TestParseCSVHandlesBOM(t *testing.T) {
	ds, err := ParseCSV(strings.NewReader("\uFEFF" + sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("rows = %d, want 3", ds.Len())
	}
}
