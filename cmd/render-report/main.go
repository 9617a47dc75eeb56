package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joelkehle/envsim/internal/report"
	"github.com/joelkehle/envsim/internal/simulation"
)

func main() {
	inputPath := flag.String("input", "", "Path to saved simulation result JSON (the data object)")
	insightsPath := flag.String("insights", "", "Optional path to per-location insights JSON")
	markdownPath := flag.String("markdown", "", "Path to write report markdown (defaults to stdout when no -output)")
	outputPath := flag.String("output", "", "Optional path to write the rendered PDF")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	in, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	var result simulation.SimulationResult
	if err := json.Unmarshal(in, &result); err != nil {
		log.Fatalf("decode result JSON: %v", err)
	}

	insights := map[string]string{}
	if *insightsPath != "" {
		blob, err := os.ReadFile(*insightsPath)
		if err != nil {
			log.Fatalf("read insights: %v", err)
		}
		if err := json.Unmarshal(blob, &insights); err != nil {
			log.Fatalf("decode insights JSON: %v", err)
		}
	}

	markdown := simulation.BuildReportMarkdown(result, insights)

	if *markdownPath != "" {
		if err := os.WriteFile(*markdownPath, []byte(markdown), 0o644); err != nil {
			log.Fatalf("write markdown: %v", err)
		}
	} else if *outputPath == "" {
		os.Stdout.WriteString(markdown)
	}

	if *outputPath != "" {
		renderer := report.NewChromiumPDFRenderer()
		pdf, err := renderer.Render(context.Background(), markdown)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*outputPath, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
		log.Printf("wrote %s (%d bytes)", *outputPath, len(pdf))
	}
}
