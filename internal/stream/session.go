// Package stream manages one request/response cycle against the
// completion service: chunk relay, mid-stream pause, partial-result
// persistence and usage accounting.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oneiro-ai/oneiro/internal/llm"
)

// State is the lifecycle of one streaming turn.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StatePaused
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StatePaused:
		return "paused"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrPaused is the relay's internal abort signal when the cancel
	// flag is observed between chunks.
	ErrPaused = errors.New("stream paused")

	// ErrStreamTransport marks upstream transport or protocol failures.
	// Partial content is still persisted before this is surfaced.
	ErrStreamTransport = errors.New("stream transport error")

	// ErrSessionConsumed rejects reuse: one session serves one turn.
	ErrSessionConsumed = errors.New("session already run")
)

// ChunkStreamer is the completion capability consumed by a session.
type ChunkStreamer interface {
	StreamChat(ctx context.Context, messages []llm.Message, onDelta func(chunk string) error) (*llm.Usage, error)
	Model() string
}

// ResponseStore persists final and partial response content.
type ResponseStore interface {
	SaveResponse(ctx context.Context, content string, partial bool, modelID string) error
}

// Outcome reports how a turn ended.
type Outcome struct {
	State      State
	Content    string
	SavedChars int
	Usage      *llm.Usage
}

// Session owns the token relay for exactly one turn. It is not reused:
// a new turn creates a new session, so no stale cancel flag can leak
// across turns.
type Session struct {
	ID      string
	llm     ChunkStreamer
	store   ResponseStore
	tracker *UsageTracker

	cancel atomic.Bool
	state  State
}

// NewSession creates a session in StateIdle. store and tracker may be
// nil; persistence and accounting are then skipped.
func NewSession(model ChunkStreamer, store ResponseStore, tracker *UsageTracker) *Session {
	return &Session{
		ID:      uuid.New().String(),
		llm:     model,
		store:   store,
		tracker: tracker,
		state:   StateIdle,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Pause requests cancellation. Safe from any goroutine; repeats are
// idempotent, and a pause after the stream completed is a no-op.
func (s *Session) Pause() {
	s.cancel.Store(true)
}

// CancelFlag exposes the flag for an external listener to set. The flag
// is the only state shared between the listener and the relay loop.
func (s *Session) CancelFlag() *atomic.Bool {
	return &s.cancel
}

// Run dispatches the completion request and relays chunks to onChunk
// until end-of-stream, pause, or failure. The cancel flag is polled once
// per delivered chunk, bounding cancellation latency. Terminal states
// persist content: full on Completed, partial-marked on Paused/Failed.
func (s *Session) Run(ctx context.Context, messages []llm.Message, onChunk func(chunk string)) (Outcome, error) {
	if s.state != StateIdle {
		return Outcome{State: s.state}, ErrSessionConsumed
	}
	s.state = StateStreaming
	slog.Debug("stream session started", "session", s.ID, "model", s.llm.Model())

	var content strings.Builder
	usage, err := s.llm.StreamChat(ctx, messages, func(chunk string) error {
		if s.cancel.Load() {
			return ErrPaused
		}
		content.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
		return nil
	})

	outcome := Outcome{Content: content.String(), Usage: usage}

	switch {
	case err == nil:
		s.state = StateCompleted
	case errors.Is(err, ErrPaused):
		s.state = StatePaused
	default:
		s.state = StateFailed
	}
	outcome.State = s.state

	// Usage metadata may be absent on interrupted turns; record only
	// what arrived, exactly once per turn.
	if usage != nil && s.tracker != nil {
		s.tracker.Record(usage.PromptTokens, usage.CompletionTokens, s.llm.Model())
	}

	outcome.SavedChars = s.persist(ctx, outcome.Content)

	slog.Info("stream session finished",
		"session", s.ID, "state", s.state.String(),
		"chars", utf8.RuneCountInString(outcome.Content), "saved_chars", outcome.SavedChars)

	if s.state == StateFailed {
		return outcome, fmt.Errorf("%w: %v", ErrStreamTransport, err)
	}
	return outcome, nil
}

// persist flushes content through the store. Write failures are logged
// and reported as zero saved chars; they never block session teardown.
func (s *Session) persist(ctx context.Context, content string) int {
	if s.store == nil || content == "" {
		return 0
	}
	partial := s.state != StateCompleted
	if err := s.store.SaveResponse(ctx, content, partial, s.llm.Model()); err != nil {
		slog.Error("persist response failed", "session", s.ID, "partial", partial, "error", err)
		return 0
	}
	return utf8.RuneCountInString(content)
}
