package scoring

import (
	"log/slog"
	"sync"
)

// ModelPrice is the per-million-token price for one model, USD.
type ModelPrice struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// defaultPriceTable is a representative per-model price table; unknown
// models are tracked but contribute $0 to the USD total (and are logged at
// summary time) rather than causing a Recording failure.
var defaultPriceTable = map[string]ModelPrice{
	"gemini-2.0-flash-thinking-exp-01-21": {InputPerMillion: 0.0, OutputPerMillion: 0.0},
	"gpt-4o":                             {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini":                        {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"claude-3-5-sonnet":                  {InputPerMillion: 3.00, OutputPerMillion: 15.00},
}

// QuotaThresholds configures the usage alarm points for a single run.
type QuotaThresholds struct {
	MaxInputTokens  int64
	MaxOutputTokens int64
	MaxUSD          float64
}

// modelUsage accumulates per-model token counts.
type modelUsage struct {
	PromptTokens     int64
	CompletionTokens int64
	Calls            int64
}

// CostTracker is the single process-wide LLM-usage aggregator, constructed
// once and injected rather than held as a package global.
type CostTracker struct {
	mu         sync.Mutex
	usage      map[string]*modelUsage
	priceTable map[string]ModelPrice
	thresholds QuotaThresholds
	alarmed    map[string]bool
}

// NewCostTracker constructs a CostTracker. priceTable may be nil to use
// defaultPriceTable.
func NewCostTracker(priceTable map[string]ModelPrice, thresholds QuotaThresholds) *CostTracker {
	if priceTable == nil {
		priceTable = defaultPriceTable
	}
	return &CostTracker{
		usage:      make(map[string]*modelUsage),
		priceTable: priceTable,
		thresholds: thresholds,
		alarmed:    make(map[string]bool),
	}
}

// RecordUsage records one LLM call's token usage and checks quota alarms.
func (c *CostTracker) RecordUsage(model string, promptTokens, completionTokens int) {
	if model == "" {
		return
	}
	c.mu.Lock()
	u, ok := c.usage[model]
	if !ok {
		u = &modelUsage{}
		c.usage[model] = u
	}
	u.PromptTokens += int64(promptTokens)
	u.CompletionTokens += int64(completionTokens)
	u.Calls++
	c.mu.Unlock()

	c.checkAlarms()
}

// ModelSummary is one row of the per-model usage table.
type ModelSummary struct {
	Model            string
	Calls            int64
	PromptTokens     int64
	CompletionTokens int64
	USD              float64
}

// Summary returns the per-model usage table at run end.
func (c *CostTracker) Summary() []ModelSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ModelSummary, 0, len(c.usage))
	for model, u := range c.usage {
		price, known := c.priceTable[model]
		var usd float64
		if known {
			usd = float64(u.PromptTokens)/1_000_000*price.InputPerMillion +
				float64(u.CompletionTokens)/1_000_000*price.OutputPerMillion
		} else {
			slog.Warn("scoring: no price entry for model, USD cost omitted", "model", model)
		}
		out = append(out, ModelSummary{
			Model:            model,
			Calls:            u.Calls,
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			USD:              usd,
		})
	}
	return out
}

// totalsLocked must be called with c.mu held.
func (c *CostTracker) totalsLocked() (inputTokens, outputTokens int64, usd float64) {
	for model, u := range c.usage {
		inputTokens += u.PromptTokens
		outputTokens += u.CompletionTokens
		if price, ok := c.priceTable[model]; ok {
			usd += float64(u.PromptTokens)/1_000_000*price.InputPerMillion +
				float64(u.CompletionTokens)/1_000_000*price.OutputPerMillion
		}
	}
	return
}

func (c *CostTracker) checkAlarms() {
	c.mu.Lock()
	inputTokens, outputTokens, usd := c.totalsLocked()
	c.mu.Unlock()

	c.maybeAlarm("input_tokens", c.thresholds.MaxInputTokens > 0 && inputTokens >= c.thresholds.MaxInputTokens, inputTokens, c.thresholds.MaxInputTokens)
	c.maybeAlarm("output_tokens", c.thresholds.MaxOutputTokens > 0 && outputTokens >= c.thresholds.MaxOutputTokens, outputTokens, c.thresholds.MaxOutputTokens)
	if c.thresholds.MaxUSD > 0 && usd >= c.thresholds.MaxUSD {
		c.maybeAlarmUSD(usd)
	}
}

func (c *CostTracker) maybeAlarm(key string, triggered bool, value, threshold int64) {
	if !triggered {
		return
	}
	c.mu.Lock()
	already := c.alarmed[key]
	c.alarmed[key] = true
	c.mu.Unlock()
	if !already {
		slog.Warn("scoring: cost quota threshold exceeded", "quota", key, "value", value, "threshold", threshold)
	}
}

func (c *CostTracker) maybeAlarmUSD(usd float64) {
	c.mu.Lock()
	already := c.alarmed["usd"]
	c.alarmed["usd"] = true
	c.mu.Unlock()
	if !already {
		slog.Warn("scoring: cost quota threshold exceeded", "quota", "usd", "value", usd, "threshold", c.thresholds.MaxUSD)
	}
}
