package locations

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joelkehle/envsim/internal/schema"
	"github.com/joelkehle/envsim/internal/simulation"
)

// The SQLite snapshot mirrors the CSV shape with one column per metric.
// NULL baseline means the metric value was missing for that row.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS locations (
	name    TEXT PRIMARY KEY,
	seat    TEXT NOT NULL DEFAULT '',
	lat     REAL NOT NULL,
	lon     REAL NOT NULL,
	density INTEGER NOT NULL,
	pos     INTEGER NOT NULL,
	no2     REAL,
	pm25    REAL,
	gwp     REAL,
	aqi     REAL
);
`

var metricSQLColumns = map[schema.Metric]string{
	schema.MetricNO2:  "no2",
	schema.MetricPM25: "pm25",
	schema.MetricGWP:  "gwp",
	schema.MetricAQI:  "aqi",
}

type sqliteRow struct {
	Name    string          `db:"name"`
	Seat    string          `db:"seat"`
	Lat     float64         `db:"lat"`
	Lon     float64         `db:"lon"`
	Density int             `db:"density"`
	Pos     int             `db:"pos"`
	NO2     sql.NullFloat64 `db:"no2"`
	PM25    sql.NullFloat64 `db:"pm25"`
	GWP     sql.NullFloat64 `db:"gwp"`
	AQI     sql.NullFloat64 `db:"aqi"`
}

// OpenSQLite loads the location dataset from a SQLite snapshot into
// memory. The database is only read; request-time lookups never touch it.
func OpenSQLite(path string) (*Dataset, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, simulation.DataFormatError("open sqlite dataset", err)
	}
	defer db.Close()

	var rows []sqliteRow
	if err := db.Select(&rows, "SELECT name, seat, lat, lon, density, pos, no2, pm25, gwp, aqi FROM locations ORDER BY pos"); err != nil {
		return nil, simulation.DataFormatError("query sqlite dataset", err)
	}

	ds := &Dataset{metrics: map[schema.Metric]bool{}}
	// Every metric column exists in the snapshot schema; per-row NULLs
	// behave like invalid CSV cells.
	for m := range metricSQLColumns {
		ds.metrics[m] = true
	}
	for _, r := range rows {
		if r.Density < 0 {
			continue
		}
		baselines := map[schema.Metric]float64{}
		for m, v := range map[schema.Metric]sql.NullFloat64{
			schema.MetricNO2:  r.NO2,
			schema.MetricPM25: r.PM25,
			schema.MetricGWP:  r.GWP,
			schema.MetricAQI:  r.AQI,
		} {
			if v.Valid && v.Float64 >= 0 {
				baselines[m] = v.Float64
			}
		}
		ds.rows = append(ds.rows, row{
			Name:      r.Name,
			Seat:      r.Seat,
			Lat:       r.Lat,
			Lon:       r.Lon,
			Density:   r.Density,
			Baselines: baselines,
		})
	}
	return ds, nil
}

// WriteSQLite writes a dataset snapshot, replacing any existing rows.
func WriteSQLite(path string, ds *Dataset) error {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM locations"); err != nil {
		return fmt.Errorf("clear locations: %w", err)
	}
	stmt, err := tx.PrepareNamed(`INSERT INTO locations (name, seat, lat, lon, density, pos, no2, pm25, gwp, aqi)
		VALUES (:name, :seat, :lat, :lon, :density, :pos, :no2, :pm25, :gwp, :aqi)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for pos, r := range ds.rows {
		sr := sqliteRow{
			Name:    r.Name,
			Seat:    r.Seat,
			Lat:     r.Lat,
			Lon:     r.Lon,
			Density: r.Density,
			Pos:     pos,
			NO2:     nullBaseline(r, schema.MetricNO2),
			PM25:    nullBaseline(r, schema.MetricPM25),
			GWP:     nullBaseline(r, schema.MetricGWP),
			AQI:     nullBaseline(r, schema.MetricAQI),
		}
		if _, err := stmt.Exec(sr); err != nil {
			return fmt.Errorf("insert %s: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

func nullBaseline(r row, m schema.Metric) sql.NullFloat64 {
	v, ok := r.Baselines[m]
	return sql.NullFloat64{Float64: v, Valid: ok}
}
