// File: services/assistant/stream.go
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Retry policy for the model call.
const (
	completionAttempts = 3
	completionBackoff  = 800 * time.Millisecond
)

// streamGuard is the two-state buffering machine for outward fragments:
// forwarding until the first sight of a control-tag marker, then buffering
// for the rest of the turn. It never re-enters forwarding once a marker has
// been seen, so tag JSON can never reach the end user verbatim.
type streamGuard struct {
	held bool
	cut  int
}

// safeLen returns how many bytes of the accumulated text may be forwarded.
func (g *streamGuard) safeLen(acc string) int {
	if g.held {
		return g.cut
	}
	cut := len(acc)
	for _, marker := range tagMarkers {
		if idx := strings.Index(acc, marker); idx >= 0 && idx < cut {
			cut = idx
			g.held = true
		}
	}
	if g.held {
		g.cut = cut
		return cut
	}
	// Withhold a trailing fragment that could be the start of a marker that
	// is split across stream chunks.
	return len(acc) - partialMarkerSuffix(acc)
}

// partialMarkerSuffix returns the length of the longest suffix of acc that
// is a proper prefix of any marker.
func partialMarkerSuffix(acc string) int {
	longest := 0
	for _, marker := range tagMarkers {
		max := len(marker) - 1
		if max > len(acc) {
			max = len(acc)
		}
		for n := max; n > longest; n-- {
			if strings.HasSuffix(acc, marker[:n]) {
				longest = n
				break
			}
		}
	}
	return longest
}

// completionRunner drives the model call with bounded retry, forwarding
// guarded fragments to emit as they arrive.
type completionRunner struct {
	completer Completer
	attempts  int
	backoff   time.Duration
	logger    *zap.Logger
}

func newCompletionRunner(c Completer, logger *zap.Logger) *completionRunner {
	return &completionRunner{
		completer: c,
		attempts:  completionAttempts,
		backoff:   completionBackoff,
		logger:    logger,
	}
}

// run returns the full accumulated model response plus the prefix of prose
// already delivered through emit. A retry may replay different text than the
// failed attempt streamed; live emission continues only while the new stream
// reproduces what already went out, so two attempts are never spliced
// mid-sentence. On final failure the returned error wraps the last attempt's
// cause; nothing more is emitted.
func (r *completionRunner) run(ctx context.Context, sessionID, prompt string, emit func(string)) (string, string, error) {
	guard := &streamGuard{}
	var delivered strings.Builder
	diverged := false

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		var acc strings.Builder
		full, err := r.completer.CompleteStream(ctx, prompt, func(frag string) {
			acc.WriteString(frag)
			text := acc.String()
			n := guard.safeLen(text)
			if diverged {
				return
			}
			d := delivered.String()
			limit := len(d)
			if len(text) < limit {
				limit = len(text)
			}
			if text[:limit] != d[:limit] {
				diverged = true
				return
			}
			if n > len(d) {
				emit(text[len(d):n])
				delivered.WriteString(text[len(d):n])
			}
		})
		if err == nil {
			// Flush whatever the partial-marker holdback was still keeping.
			if !guard.held && !diverged {
				if d := delivered.String(); strings.HasPrefix(full, d) && len(full) > len(d) {
					emit(full[len(d):])
					delivered.WriteString(full[len(d):])
				}
			}
			return full, delivered.String(), nil
		}

		lastErr = err
		r.logger.Warn("model completion attempt failed",
			zap.String("session_id", sessionID),
			zap.String("stage", "completion"),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < r.attempts {
			select {
			case <-ctx.Done():
				return "", delivered.String(), ctx.Err()
			case <-time.After(r.backoff):
			}
		}
	}
	return "", delivered.String(), fmt.Errorf("model completion failed after %d attempts: %w", r.attempts, lastErr)
}
