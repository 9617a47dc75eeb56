package simulation

import (
	"context"
	"fmt"
)

const gateSystemPrompt = "You are a relevance screener for an environmental data simulation service. " +
	"Judge topical relevance and scientific plausibility independently. Respond with strict JSON only."

const gatePromptTemplate = `Determine if the user prompt is relevant to environmental data simulation, and if it makes sense to model.

A prompt is RELEVANT if it's about:
- Environmental scenarios (pollution, emissions, climate change)
- Air quality, water quality, soil conditions
- Transportation impacts (cars, planes, ships)
- Industrial changes, policy changes affecting environment
- Natural disasters, weather events
- Energy production, renewable energy
- Urban planning, infrastructure changes

A prompt MAKES SENSE TO MODEL if:
- There's a logical, scientifically plausible connection between the scenario and environmental impact
- The scenario could realistically affect pollution, emissions, or environmental metrics
- The impact is measurable and significant enough to model

Examples of what DOESN'T make sense to model:
- "How will chewing bubblegum affect climate?" (no logical connection)
- "What if everyone wore red shirts?" (no environmental impact)
- "Impact of eating ice cream on air quality" (no scientific basis)

User Prompt: %q

Return ONLY a valid JSON object with these exact fields:
- relevant: boolean
- makes_sense_to_model: boolean
- reason: string
- suggestions: list of strings`

// RelevanceGate classifies whether a free-text prompt is environmentally
// meaningful and plausible enough to simulate. It has no side effects
// beyond the outbound call and is safe to repeat.
type RelevanceGate struct {
	caller LLMCaller
}

func NewRelevanceGate(caller LLMCaller) *RelevanceGate {
	return &RelevanceGate{caller: caller}
}

// Classify never returns an error: any service or parse failure fails
// closed with relevant=false so the pipeline aborts before numeric stages.
func (g *RelevanceGate) Classify(ctx context.Context, prompt string) ClassificationResult {
	if g.caller == nil {
		return failClosed("semantic generation service not configured")
	}
	raw, err := g.caller.GenerateJSON(ctx, gateSystemPrompt, fmt.Sprintf(gatePromptTemplate, prompt))
	if err != nil {
		return failClosed("classification call failed: " + err.Error())
	}
	var c ClassificationResult
	if err := decodeJSON(raw, &c); err != nil {
		return failClosed("classification response was not parseable")
	}
	return c
}

func failClosed(reason string) ClassificationResult {
	return ClassificationResult{Relevant: false, MakesSenseToModel: false, Reason: reason}
}
