// Package pricing maps model ids to USD prices per million tokens.
package pricing

// Price is USD per million input and output tokens.
type Price struct {
	InputPerM  float64
	OutputPerM float64
}

// Default is the conservative fallback used for model ids missing from the
// table, so an unpriced model shows an overestimate rather than zero cost.
var Default = Price{InputPerM: 0.50, OutputPerM: 2.00}

var table = map[string]Price{
	"openai/gpt-5.1":       {InputPerM: 1.25, OutputPerM: 10.0},
	"openai/gpt-4o-mini":   {InputPerM: 0.15, OutputPerM: 0.60},
	"z-ai/glm-4.7":         {InputPerM: 0.16, OutputPerM: 0.80},
	"minimax/minimax-m2.1": {InputPerM: 0.12, OutputPerM: 0.48},
	"xiaomi/mimo-v2-flash": {InputPerM: 0.10, OutputPerM: 0.10},
}

// Lookup returns the price for a model id, falling back to Default.
func Lookup(modelID string) (inPerM, outPerM float64) {
	if p, ok := table[modelID]; ok {
		return p.InputPerM, p.OutputPerM
	}
	return Default.InputPerM, Default.OutputPerM
}

// Cost converts token counts to USD for a model id.
func Cost(modelID string, inputTokens, outputTokens int) float64 {
	inPerM, outPerM := Lookup(modelID)
	return (float64(inputTokens)*inPerM + float64(outputTokens)*outPerM) / 1e6
}
