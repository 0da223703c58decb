package fetch

import (
	"context"
	"time"
)

// AttemptFunc processes the pending items of one round and returns those
// that failed.
type AttemptFunc func(ctx context.Context, round int, pending []string) []string

// RetryRounds runs attempt up to maxRounds times, each round over the items
// that failed the previous one, pausing backoff between rounds. It returns
// the items still failing and the number of rounds run. Cancellation stops
// further rounds and leaves the pending items as failed.
func RetryRounds(ctx context.Context, items []string, maxRounds int, backoff time.Duration, attempt AttemptFunc) ([]string, int) {
	pending := items
	rounds := 0
	for rounds < maxRounds && len(pending) > 0 {
		if rounds > 0 && backoff > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return pending, rounds
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return pending, rounds
		}
		rounds++
		pending = attempt(ctx, rounds, pending)
	}
	return pending, rounds
}

// batches splits items into consecutive chunks of at most size.
func batches(items []string, size int) [][]string {
	if size <= 0 {
		size = len(items)
	}
	var out [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
