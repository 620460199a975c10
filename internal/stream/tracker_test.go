package stream

import (
	"sync"
	"testing"
)

func TestTrackerSumsAcrossTurns(t *testing.T) {
	tracker := NewUsageTracker()

	turns := []struct{ prompt, completion int64 }{
		{100, 20}, {250, 75}, {3, 1},
	}
	var wantPrompt, wantCompletion int64
	for _, turn := range turns {
		tracker.Record(turn.prompt, turn.completion, "llama3.1")
		wantPrompt += turn.prompt
		wantCompletion += turn.completion
	}

	summary := tracker.Summary()
	if summary.PromptTokens != wantPrompt {
		t.Errorf("PromptTokens = %d, want %d", summary.PromptTokens, wantPrompt)
	}
	if summary.CompletionTokens != wantCompletion {
		t.Errorf("CompletionTokens = %d, want %d", summary.CompletionTokens, wantCompletion)
	}
	if summary.CallCount != int64(len(turns)) {
		t.Errorf("CallCount = %d, want %d", summary.CallCount, len(turns))
	}
	if summary.ModelID != "llama3.1" {
		t.Errorf("ModelID = %q, want the single model", summary.ModelID)
	}
	if summary.TotalTokens() != wantPrompt+wantCompletion {
		t.Errorf("TotalTokens = %d", summary.TotalTokens())
	}
}

func TestTrackerMultipleModels(t *testing.T) {
	tracker := NewUsageTracker()
	tracker.Record(10, 1, "model-a")
	tracker.Record(20, 2, "model-b")

	summary := tracker.Summary()
	if summary.ModelID != "" {
		t.Errorf("ModelID = %q, want empty for mixed models", summary.ModelID)
	}

	byModel := tracker.ByModel()
	if len(byModel) != 2 {
		t.Fatalf("got %d models, want 2", len(byModel))
	}
	if byModel["model-a"].PromptTokens != 10 || byModel["model-b"].PromptTokens != 20 {
		t.Error("per-model counters wrong")
	}
}

func TestTrackerConcurrentRecords(t *testing.T) {
	tracker := NewUsageTracker()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record(1, 1, "m")
		}()
	}
	wg.Wait()

	if got := tracker.Summary().CallCount; got != 50 {
		t.Errorf("CallCount = %d, want 50", got)
	}
}
