package model

import "time"

// RetryConfig governs how Complete reacts to retryable provider errors.
type RetryConfig struct {
	MaxAttempts        uint
	InitialDelay       time.Duration
	MaxDelay           time.Duration
	UseProviderBackoff bool
	BackoffMultiplier  float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:        3,
		InitialDelay:       500 * time.Millisecond,
		MaxDelay:           8 * time.Second,
		UseProviderBackoff: true,
		BackoffMultiplier:  2.0,
	}
}

// nextDelay returns the wait before the given (1-based) attempt. A
// provider-supplied hint wins when configured and present.
func (c RetryConfig) nextDelay(attempt uint, hint time.Duration) time.Duration {
	if c.UseProviderBackoff && hint > 0 {
		return hint
	}

	delay := c.InitialDelay
	for i := uint(1); i < attempt; i++ {
		delay = time.Duration(float64(delay) * c.BackoffMultiplier)
	}

	if c.MaxDelay > 0 && delay > c.MaxDelay {
		return c.MaxDelay
	}

	return delay
}
