package nexus

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig holds retry configuration parameters
type RetryConfig struct {
	InitialDelay   time.Duration // e.g., 500 milliseconds
	MaxDelay       time.Duration // e.g., 10 seconds
	MaxRetries     int           // retries after the first attempt
	StormThreshold int           // failures per minute before giving up early
	BackoffFactor  float64       // e.g., 2.0 (exponential)
	Jitter         bool          // Add randomization to prevent thundering herd
}

// DefaultRetryConfig is used when New is given a zero RetryConfig
var DefaultRetryConfig = RetryConfig{
	InitialDelay:   500 * time.Millisecond,
	MaxDelay:       10 * time.Second,
	MaxRetries:     3,
	StormThreshold: 10,
	BackoffFactor:  2.0,
	Jitter:         true,
}

// Health tracks how the node has been answering
type Health struct {
	FailureCount     int
	LastFailureTime  time.Time
	ConsecutiveFails int
	RetryAttempt     int
	InStormMode      bool
}

// newBackOff builds the retry schedule for one request
func (c RetryConfig) newBackOff() backoff.BackOff {
	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = c.InitialDelay
	strategy.MaxInterval = c.MaxDelay
	strategy.Multiplier = c.BackoffFactor
	strategy.MaxElapsedTime = 0 // bounded by MaxRetries instead
	strategy.RandomizationFactor = 0
	if c.Jitter {
		strategy.RandomizationFactor = 0.25 // ±25% jitter
	}

	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(strategy, uint64(retries))
}

// GetHealth returns the current health counters
func (c *Client) GetHealth() Health {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.healthStatus
}

// SetRetryConfig configures retry behavior
func (c *Client) SetRetryConfig(config RetryConfig) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.retryConfig = config
}

func (c *Client) currentRetryConfig() RetryConfig {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.retryConfig
}

// isInStormMode reports whether recent failures reached the storm threshold
func (c *Client) isInStormMode() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	oneMinuteAgo := c.clock.Now().Add(-time.Minute)

	// drop failures older than a minute
	cleaned := c.recentFailures[:0]
	for _, failureTime := range c.recentFailures {
		if failureTime.After(oneMinuteAgo) {
			cleaned = append(cleaned, failureTime)
		}
	}
	c.recentFailures = cleaned

	if c.retryConfig.StormThreshold > 0 && len(cleaned) >= c.retryConfig.StormThreshold {
		if !c.healthStatus.InStormMode {
			c.logger.WithField("failures", len(cleaned)).Warn("⚠️ Nexus API entering storm mode")
			c.healthStatus.InStormMode = true
		}
		return true
	}

	if c.healthStatus.InStormMode {
		c.logger.Info("✅ Nexus API exiting storm mode")
		c.healthStatus.InStormMode = false
	}
	return false
}

// recordFailure records a failed request
func (c *Client) recordFailure() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.clock.Now()
	c.healthStatus.FailureCount++
	c.healthStatus.ConsecutiveFails++
	c.healthStatus.RetryAttempt++
	c.healthStatus.LastFailureTime = now
	c.recentFailures = append(c.recentFailures, now)
}

// recordSuccess records a successful request
func (c *Client) recordSuccess() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.healthStatus.ConsecutiveFails > 0 {
		c.logger.WithField("failures", c.healthStatus.ConsecutiveFails).Info("✅ Nexus API recovered")
	}
	c.healthStatus.ConsecutiveFails = 0
	c.healthStatus.RetryAttempt = 0
}
