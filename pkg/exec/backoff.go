package exec

import (
	"math/rand"
	"time"
)

const (
	// maxBackoff caps the exponential delay between attempts.
	maxBackoff = 30 * time.Second

	// backoffBase is the first-retry delay before jitter.
	backoffBase = time.Second

	// maxJitter is the upper bound of the random component added to each
	// backoff delay to spread retries from concurrent callers.
	maxJitter = time.Second
)

// backoffDelay computes the jittered exponential delay for the given attempt:
// min(30s, 1s*2^attempt + random(0,1s)). The jitter source is injectable for
// deterministic tests.
func backoffDelay(attempt int, jitter func(int64) int64) time.Duration {
	if jitter == nil {
		jitter = rand.Int63n
	}

	// 2^attempt saturates quickly; beyond the cap exponent the base alone
	// already exceeds maxBackoff.
	delay := maxBackoff
	if attempt < 6 {
		delay = backoffBase << uint(attempt)
	}
	delay += time.Duration(jitter(int64(maxJitter)))

	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}
