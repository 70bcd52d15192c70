// Package cost extracts agent-reported spend from task results.
package cost

// Usage holds the conventional usage object an agent attaches to its
// result: a dollar figure when the agent reports one, token counts
// otherwise.
type Usage struct {
	Model        string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// ModelPricing holds per-token pricing for a model (in USD per token).
type ModelPricing struct {
	InputPerToken  float64
	OutputPerToken float64
}

// defaultPricing provides fallback pricing for common agent models.
var defaultPricing = map[string]ModelPricing{
	"claude-opus-4-6":   {InputPerToken: 15.0 / 1_000_000, OutputPerToken: 75.0 / 1_000_000},
	"claude-sonnet-4-6": {InputPerToken: 3.0 / 1_000_000, OutputPerToken: 15.0 / 1_000_000},
	"claude-haiku-4-5":  {InputPerToken: 1.0 / 1_000_000, OutputPerToken: 5.0 / 1_000_000},
}

// FromResult reads the usage object from a decoded agent result.
// Missing or malformed usage yields a zero Usage.
func FromResult(res map[string]any) Usage {
	u := Usage{}
	raw, ok := res["usage"].(map[string]any)
	if !ok {
		return u
	}
	u.Model, _ = raw["model"].(string)
	u.Cost = floatField(raw, "cost")
	u.InputTokens = intField(raw, "input_tokens")
	u.OutputTokens = intField(raw, "output_tokens")
	return u
}

// Dollars returns the reported cost, falling back to token counts and
// known per-model pricing when the agent reports tokens only.
func (u Usage) Dollars() float64 {
	if u.Cost > 0 {
		return u.Cost
	}
	pricing, ok := defaultPricing[u.Model]
	if !ok {
		return 0
	}
	return float64(u.InputTokens)*pricing.InputPerToken +
		float64(u.OutputTokens)*pricing.OutputPerToken
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
