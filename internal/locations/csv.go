package locations

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joelkehle/envsim/internal/schema"
	"github.com/joelkehle/envsim/internal/simulation"
)

const (
	colName    = "County Name"
	colLat     = "Latitude"
	colLon     = "Longitude"
	colSeat    = "County Seat"
	colDensity = "Pop. Density"
)

// LoadCSV reads the location dataset from a CSV file.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, simulation.DataFormatError("open location dataset", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV reads the dataset from a reader. Required base columns missing
// from the header are a DataFormat error; metric columns are optional and
// recorded so EntitiesFor can distinguish "column absent" (configuration
// error) from "row invalid" (excluded).
func ParseCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, simulation.DataFormatError("read dataset header", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(stripBOM(h))] = i
	}
	for _, required := range []string{colName, colLat, colLon, colSeat, colDensity} {
		if _, ok := idx[required]; !ok {
			return nil, simulation.DataFormatError(fmt.Sprintf("location dataset missing required column %q", required), nil)
		}
	}

	metrics := map[schema.Metric]bool{}
	metricIdx := map[schema.Metric]int{}
	for _, m := range schema.Metrics() {
		col, _ := schema.Column(m)
		if i, ok := idx[col]; ok {
			metrics[m] = true
			metricIdx[m] = i
		}
	}

	ds := &Dataset{metrics: metrics}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, simulation.DataFormatError("read dataset row", err)
		}
		r, ok := parseRow(record, idx, metricIdx)
		if !ok {
			continue
		}
		ds.rows = append(ds.rows, r)
	}
	return ds, nil
}

func parseRow(record []string, idx map[string]int, metricIdx map[schema.Metric]int) (row, bool) {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := field(idx[colName])
	if name == "" {
		return row{}, false
	}
	lat, err := strconv.ParseFloat(field(idx[colLat]), 64)
	if err != nil {
		return row{}, false
	}
	lon, err := strconv.ParseFloat(field(idx[colLon]), 64)
	if err != nil {
		return row{}, false
	}
	density, err := strconv.Atoi(field(idx[colDensity]))
	if err != nil || density < 0 {
		return row{}, false
	}

	baselines := map[schema.Metric]float64{}
	for m, i := range metricIdx {
		v, err := strconv.ParseFloat(field(i), 64)
		if err != nil || v < 0 {
			continue
		}
		baselines[m] = v
	}

	return row{
		Name:      name,
		Seat:      field(idx[colSeat]),
		Lat:       lat,
		Lon:       lon,
		Density:   density,
		Baselines: baselines,
	}, true
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
