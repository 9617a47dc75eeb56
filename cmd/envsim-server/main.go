package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joelkehle/envsim/internal/httpapi"
	"github.com/joelkehle/envsim/internal/locations"
	"github.com/joelkehle/envsim/internal/simulation"
	"github.com/joelkehle/envsim/internal/tracing"
)

func main() {
	addr := flag.String("addr", ":8000", "HTTP listen address")
	dataPath := flag.String("data", "unique_lat_lon.csv", "Location dataset path (.csv or .db/.sqlite)")
	variant := flag.String("variant", "density_factors", "Specification variant: density_factors or scaling_rules")
	snapshotDB := flag.String("snapshot-db", "", "Optional path to write a SQLite snapshot of the loaded dataset")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, "envsim-server")
	if err != nil {
		log.Fatalf("init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	dataset, err := loadDataset(*dataPath)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}
	log.Printf("loaded %d locations from %s", dataset.Len(), *dataPath)

	if *snapshotDB != "" {
		if err := locations.WriteSQLite(*snapshotDB, dataset); err != nil {
			log.Fatalf("write dataset snapshot: %v", err)
		}
		log.Printf("wrote dataset snapshot to %s", *snapshotDB)
	}

	caller, err := simulation.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	pipeline := simulation.NewPipeline(simulation.Config{
		Caller:  caller,
		Variant: parseVariant(*variant),
	})

	server := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.NewServer(pipeline, dataset.Source()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("starting envsim server on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func loadDataset(path string) (*locations.Dataset, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") {
		return locations.OpenSQLite(path)
	}
	return locations.LoadCSV(path)
}

func parseVariant(s string) simulation.SpecVariant {
	if simulation.SpecVariant(s) == simulation.VariantScalingRules {
		return simulation.VariantScalingRules
	}
	return simulation.VariantDensityFactors
}
