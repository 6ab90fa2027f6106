package supervisor

import (
	"math"
	"math/rand"
	"time"
)

// BackoffConfig holds the configuration for exponential relaunch backoff.
type BackoffConfig struct {
	Initial    time.Duration // Initial backoff delay (default: 2s)
	Max        time.Duration // Maximum backoff delay (default: 30s)
	Multiplier float64       // Multiplier for each attempt (default: 2.0)
	JitterPct  float64       // Jitter as a percentage of delay (default: 0.2 = ±10%)
}

// DefaultBackoffConfig returns sensible defaults for relaunching a game.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial:    2 * time.Second,
		Max:        30 * time.Second,
		Multiplier: 2.0,
		JitterPct:  0.2, // ±10% jitter
	}
}

// Backoff calculates exponential backoff delays with jitter.
// A fixed seed gives a reproducible delay sequence.
type Backoff struct {
	config   BackoffConfig
	attempts int
	rng      *rand.Rand
}

// NewBackoff creates a new Backoff calculator seeded with seed.
func NewBackoff(seed int64, cfg BackoffConfig) *Backoff {
	return &Backoff{
		config:   cfg,
		attempts: 0,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next backoff delay and increments the attempt counter.
func (b *Backoff) Next() time.Duration {
	delay := b.Calculate()
	b.attempts++
	return delay
}

// Calculate returns the current backoff delay without incrementing attempts.
func (b *Backoff) Calculate() time.Duration {
	// Calculate base delay: initial * multiplier^attempts
	delay := float64(b.config.Initial) * math.Pow(b.config.Multiplier, float64(b.attempts))

	// Cap at maximum
	if delay > float64(b.config.Max) {
		delay = float64(b.config.Max)
	}

	// Add jitter: ±(JitterPct/2) of the delay
	if b.config.JitterPct > 0 {
		jitterRange := delay * b.config.JitterPct
		jitter := jitterRange*b.rng.Float64() - jitterRange/2
		delay += jitter
	}

	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// Reset resets the attempt counter to zero.
func (b *Backoff) Reset() {
	b.attempts = 0
}

// Attempts returns the current attempt count.
func (b *Backoff) Attempts() int {
	return b.attempts
}

// SetAttempts sets the attempt counter.
func (b *Backoff) SetAttempts(n int) {
	b.attempts = n
}

// BackoffResetThreshold is the minimum uptime after which a game is
// considered to have been stable, so the next failure starts backoff over.
const BackoffResetThreshold = 5 * time.Minute

// ShouldReset determines if backoff should be reset after a run.
// A run that reached the success marker or stayed up long enough resets it.
func ShouldReset(uptime time.Duration, markerObserved bool) bool {
	if markerObserved {
		return true
	}
	return uptime >= BackoffResetThreshold
}
