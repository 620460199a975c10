package stream

import (
	"sync"
	"time"

	"github.com/oneiro-ai/oneiro/internal/models"
)

// UsageTracker accumulates token counters for the process lifetime.
// Counters are monotonic and reset only at process start. Recording
// happens once per terminal stream transition, never per chunk.
type UsageTracker struct {
	mu      sync.Mutex
	started time.Time
	byModel map[string]*models.UsageRecord
}

// NewUsageTracker returns an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		started: time.Now(),
		byModel: make(map[string]*models.UsageRecord),
	}
}

// Record adds one turn's usage for a model.
func (t *UsageTracker) Record(promptTokens, completionTokens int64, modelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.byModel[modelID]
	if !ok {
		rec = &models.UsageRecord{ModelID: modelID}
		t.byModel[modelID] = rec
	}
	rec.PromptTokens += promptTokens
	rec.CompletionTokens += completionTokens
	rec.CallCount++
}

// Summary returns the accumulated totals. ModelID is set when a single
// model produced all usage, empty otherwise.
func (t *UsageTracker) Summary() models.UsageRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total models.UsageRecord
	for id, rec := range t.byModel {
		total.PromptTokens += rec.PromptTokens
		total.CompletionTokens += rec.CompletionTokens
		total.CallCount += rec.CallCount
		total.ModelID = id
	}
	if len(t.byModel) > 1 {
		total.ModelID = ""
	}
	return total
}

// ByModel returns a copy of the per-model breakdown.
func (t *UsageTracker) ByModel() map[string]models.UsageRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]models.UsageRecord, len(t.byModel))
	for id, rec := range t.byModel {
		out[id] = *rec
	}
	return out
}

// Uptime reports how long the tracker has been accumulating.
func (t *UsageTracker) Uptime() time.Duration {
	return time.Since(t.started)
}
