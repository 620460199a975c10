package stream

import (
	"strings"
	"sync/atomic"
	"time"
)

// CancelListener watches a side-channel line feed for the pause token
// and sets the session's cancel flag when it appears. The flag is the
// only state shared with the relay loop; no locking is needed. The
// listener never blocks chunk delivery: it runs on its own goroutine
// while the relay merely polls the flag.
type CancelListener struct {
	flag   *atomic.Bool
	tokens map[string]struct{}
	stop   chan struct{}
	done   chan struct{}
}

// NewCancelListener starts watching lines for any of the pause tokens.
// Matching is case-insensitive on the trimmed line; an empty token set
// matches any non-empty line. Repeated matches are idempotent no-ops.
func NewCancelListener(lines <-chan string, tokens []string, flag *atomic.Bool) *CancelListener {
	l := &CancelListener{
		flag:   flag,
		tokens: make(map[string]struct{}, len(tokens)),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, token := range tokens {
		if token = strings.ToLower(strings.TrimSpace(token)); token != "" {
			l.tokens[token] = struct{}{}
		}
	}
	go l.watch(lines)
	return l
}

func (l *CancelListener) watch(lines <-chan string) {
	defer close(l.done)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if l.matches(line) {
				l.flag.Store(true)
			}
		case <-l.stop:
			return
		}
	}
}

func (l *CancelListener) matches(line string) bool {
	line = strings.ToLower(strings.TrimSpace(line))
	if len(l.tokens) == 0 {
		return line != ""
	}
	_, ok := l.tokens[line]
	return ok
}

// Stop signals the listener and waits at most window for it to exit.
// Returns false when the window elapsed first; the turn proceeds to
// teardown regardless, so a blocked input read cannot hang the exit.
func (l *CancelListener) Stop(window time.Duration) bool {
	select {
	case <-l.stop:
		// already stopped
	default:
		close(l.stop)
	}
	select {
	case <-l.done:
		return true
	case <-time.After(window):
		return false
	}
}
