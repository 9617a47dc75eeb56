package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	mathrand "math/rand/v2"
	"os"
	"strings"

	"github.com/joelkehle/envsim/internal/locations"
	"github.com/joelkehle/envsim/internal/simulation"
)

// One-shot CLI driver: prompt in, result JSON on stdout.
func main() {
	dataPath := flag.String("data", "unique_lat_lon.csv", "Location dataset path (.csv or .db/.sqlite)")
	prompt := flag.String("prompt", "", "Scenario prompt")
	variant := flag.String("variant", "density_factors", "Specification variant: density_factors or scaling_rules")
	withInsights := flag.String("insights", "", "Optional path to write per-location insights JSON")
	seed := flag.Uint64("seed", 0, "Seed the fallback noise source for reproducible output (0 = fresh entropy)")
	flag.Parse()

	if strings.TrimSpace(*prompt) == "" {
		log.Fatal("missing required -prompt")
	}

	dataset, err := loadDataset(*dataPath)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}

	caller, err := simulation.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	cfg := simulation.Config{Caller: caller, Variant: parseVariant(*variant)}
	if *seed != 0 {
		cfg.Noise = mathrand.New(mathrand.NewPCG(*seed, *seed))
	}
	pipeline := simulation.NewPipeline(cfg)

	ctx := context.Background()
	result, err := pipeline.SimulateWithProgress(ctx, *prompt, dataset.Source(), func(stage, message string) {
		log.Printf("[%s] %s", stage, message)
	})
	if err != nil {
		var pe *simulation.Error
		if errors.As(err, &pe) {
			printJSON(pe)
			os.Exit(1)
		}
		log.Fatal(err)
	}

	printJSON(map[string]any{"success": true, "data": result})

	if *withInsights != "" {
		insights := pipeline.Explain(ctx, result)
		blob, err := json.MarshalIndent(insights, "", "  ")
		if err != nil {
			log.Fatalf("encode insights: %v", err)
		}
		if err := os.WriteFile(*withInsights, blob, 0o644); err != nil {
			log.Fatalf("write insights: %v", err)
		}
		log.Printf("wrote insights to %s", *withInsights)
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

func printJSON(v any) {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	fmt.Println(string(blob))
}
