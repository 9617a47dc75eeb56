package simulation

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/joelkehle/envsim/internal/simulation"

// StageProgressFn receives per-stage progress notifications.
type StageProgressFn func(stage, message string)

// Pipeline runs the scenario-to-data flow: relevance gate, specification
// extraction, per-entity prediction, normalization. Insights are a
// separate call because the boundary exposes them independently. Each
// request owns its own state; a Pipeline is safe for concurrent use.
type Pipeline struct {
	gate      *RelevanceGate
	extractor *SpecificationExtractor
	engine    *PredictionEngine
	insights  *InsightGenerator
	tracer    trace.Tracer
}

// Config wires the pipeline's collaborators. Caller is the semantic
// generation service handle shared by all delegated stages; Noise pins the
// arithmetic fallback's Gaussian source when set.
type Config struct {
	Caller  LLMCaller
	Variant SpecVariant
	Noise   NoiseSource
}

func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{
		gate:      NewRelevanceGate(cfg.Caller),
		extractor: NewSpecificationExtractor(cfg.Caller, cfg.Variant),
		engine:    NewPredictionEngine(cfg.Caller, cfg.Noise),
		insights:  NewInsightGenerator(cfg.Caller),
		tracer:    otel.Tracer(tracerName),
	}
}

func (p *Pipeline) Simulate(ctx context.Context, prompt string, source EntitySource) (SimulationResult, error) {
	return p.simulate(ctx, prompt, source, nil)
}

func (p *Pipeline) SimulateWithProgress(ctx context.Context, prompt string, source EntitySource, progress StageProgressFn) (SimulationResult, error) {
	return p.simulate(ctx, prompt, source, progress)
}

func (p *Pipeline) simulate(ctx context.Context, prompt string, source EntitySource, progress StageProgressFn) (SimulationResult, error) {
	ctx, span := p.tracer.Start(ctx, "simulate")
	defer span.End()

	if strings.TrimSpace(prompt) == "" {
		return SimulationResult{}, invalidPromptError("empty prompt", nil)
	}

	emit(progress, "gate", "Classifying prompt relevance...")
	classification := p.classify(ctx, prompt)
	if !classification.Passed() {
		span.SetAttributes(attribute.Bool("gate.passed", false))
		return SimulationResult{}, invalidPromptError(classification.Reason, classification.Suggestions)
	}

	emit(progress, "extract", "Extracting scenario specification...")
	spec, err := p.extract(ctx, prompt)
	if err != nil {
		return SimulationResult{}, err
	}
	span.SetAttributes(attribute.String("spec.metric", string(spec.TargetMetric)))

	entities, err := source(spec.TargetMetric)
	if err != nil {
		return SimulationResult{}, err
	}

	emit(progress, "predict", "Generating per-location predictions...")
	points := p.predict(ctx, spec, entities)

	emit(progress, "normalize", "Normalizing predicted values...")
	points, baseline := Normalize(points)

	return SimulationResult{
		Metric:              spec.TargetMetric,
		Unit:                spec.Unit,
		ScenarioDescription: spec.ScenarioDescription,
		DataPoints:          points,
		Baseline:            baseline,
	}, nil
}

// Explain produces per-entity narratives for a finished result.
func (p *Pipeline) Explain(ctx context.Context, result SimulationResult) map[string]string {
	ctx, span := p.tracer.Start(ctx, "explain")
	defer span.End()
	return p.insights.Explain(ctx, result)
}

func (p *Pipeline) classify(ctx context.Context, prompt string) ClassificationResult {
	ctx, span := p.tracer.Start(ctx, "gate.classify")
	defer span.End()
	return p.gate.Classify(ctx, prompt)
}

func (p *Pipeline) extract(ctx context.Context, prompt string) (ScenarioSpecification, error) {
	ctx, span := p.tracer.Start(ctx, "extractor.extract")
	defer span.End()
	return p.extractor.Extract(ctx, prompt)
}

func (p *Pipeline) predict(ctx context.Context, spec ScenarioSpecification, entities []LocationEntity) []PredictedDataPoint {
	ctx, span := p.tracer.Start(ctx, "engine.predict")
	defer span.End()
	span.SetAttributes(attribute.Int("entities.count", len(entities)))
	return p.engine.Predict(ctx, spec, entities)
}

func emit(progress StageProgressFn, stage, message string) {
	if progress != nil {
		progress(stage, message)
	}
}
