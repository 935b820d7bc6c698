package catalog

import (
	"context"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/peak-catalog/internal/domain"
)

const publishAttempts = 3

// publish sends ev with exponential backoff: 200ms doubling, capped at 2s.
// A final failure is logged and dropped.
func (s *Service) publish(ctx context.Context, ev domain.PeakEvent) {
	if s.publisher == nil {
		return
	}

	backoff := 200 * time.Millisecond
	maxBackoff := 2 * time.Second

	var err error
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = s.publisher.PublishPeakEvent(ctx, ev); err == nil {
			return
		}
		s.logger.Warn("publish peak event failed", "attempt", attempt, "action", ev.Action, "peak_id", ev.PeakID, "error", err)
		if attempt == publishAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	s.logger.Error("peak event dropped", "action", ev.Action, "peak_id", ev.PeakID, "error", err)
}
