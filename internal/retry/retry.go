package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	defaultMaxAttemptsConstant      = 1
	defaultMultiplierConstant       = 2.0
	exhaustedErrorTemplateConstant  = "%s failed after %d attempt(s): %v"
	attemptFailedLogMessageConstant = "attempt failed, retrying"
	permanentFailureMessageConstant = "attempt failed permanently"
	logFieldOperationConstant       = "operation"
	logFieldAttemptConstant         = "attempt"
	logFieldMaxAttemptsConstant     = "max_attempts"
	logFieldBackoffConstant         = "backoff"
	operationNotConfiguredMessage   = "retry operation not configured"
)

// ErrOperationNotConfigured indicates Run was called without an operation.
var ErrOperationNotConfigured = errors.New(operationNotConfiguredMessage)

// Policy bounds the number of attempts and shapes the exponential backoff between them.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// Backoff returns the delay to wait after the given failed attempt (1-based).
func (policy Policy) Backoff(attempt int) time.Duration {
	schedule := policy.schedule()
	var delay time.Duration
	for step := 0; step < attempt; step++ {
		delay = schedule.NextBackOff()
	}
	return delay
}

// schedule builds the exponential delay sequence for one run. A non-positive InitialBackoff disables waiting.
func (policy Policy) schedule() backoff.BackOff {
	if policy.InitialBackoff <= 0 {
		return &backoff.ZeroBackOff{}
	}
	multiplier := policy.Multiplier
	if multiplier < 1 {
		multiplier = defaultMultiplierConstant
	}
	maxInterval := policy.MaxBackoff
	if maxInterval <= 0 {
		maxInterval = time.Duration(math.MaxInt64)
	}

	exponentialBackOff := backoff.NewExponentialBackOff()
	exponentialBackOff.InitialInterval = policy.InitialBackoff
	exponentialBackOff.MaxInterval = maxInterval
	exponentialBackOff.Multiplier = multiplier
	exponentialBackOff.RandomizationFactor = 0
	exponentialBackOff.Reset()
	return exponentialBackOff
}

func (policy Policy) attempts() int {
	if policy.MaxAttempts < defaultMaxAttemptsConstant {
		return defaultMaxAttemptsConstant
	}
	return policy.MaxAttempts
}

// Sleeper waits for the provided duration or until the context is done.
type Sleeper func(executionContext context.Context, delay time.Duration) error

// ContextSleeper is the default Sleeper backed by a timer.
func ContextSleeper(executionContext context.Context, delay time.Duration) error {
	if delay <= 0 {
		return executionContext.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-timer.C:
		return nil
	}
}

// PermanentError marks a failure that must not be retried.
type PermanentError = backoff.PermanentError

// Permanent wraps err so that Retrier.Run stops immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var permanentError *PermanentError
	return errors.As(err, &permanentError)
}

// ExhaustedError reports that every allowed attempt failed.
type ExhaustedError struct {
	Operation string
	Attempts  int
	Cause     error
}

// Error describes the exhausted operation.
func (exhaustedError ExhaustedError) Error() string {
	return fmt.Sprintf(exhaustedErrorTemplateConstant, exhaustedError.Operation, exhaustedError.Attempts, exhaustedError.Cause)
}

// Unwrap exposes the last failure.
func (exhaustedError ExhaustedError) Unwrap() error {
	return exhaustedError.Cause
}

// Retrier runs operations under a Policy.
type Retrier struct {
	policy  Policy
	sleeper Sleeper
	logger  *zap.Logger
}

// NewRetrier constructs a Retrier. A nil sleeper selects ContextSleeper and a nil logger discards output.
func NewRetrier(policy Policy, sleeper Sleeper, logger *zap.Logger) *Retrier {
	if sleeper == nil {
		sleeper = ContextSleeper
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrier{policy: policy, sleeper: sleeper, logger: logger}
}

// Run invokes operation until it succeeds, fails permanently, the context ends, or attempts run out.
// It returns the number of attempts made. A permanent failure is returned unwrapped; exhaustion yields ExhaustedError.
func (retrier *Retrier) Run(executionContext context.Context, operationName string, operation func(executionContext context.Context, attempt int) error) (int, error) {
	if operation == nil {
		return 0, ErrOperationNotConfigured
	}

	maxAttempts := retrier.policy.attempts()
	schedule := retrier.policy.schedule()
	var lastError error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if contextError := executionContext.Err(); contextError != nil {
			return attempt - 1, contextError
		}

		lastError = operation(executionContext, attempt)
		if lastError == nil {
			return attempt, nil
		}

		var permanentError *PermanentError
		if errors.As(lastError, &permanentError) {
			retrier.logger.Warn(permanentFailureMessageConstant,
				zap.String(logFieldOperationConstant, operationName),
				zap.Int(logFieldAttemptConstant, attempt),
				zap.Error(permanentError.Err),
			)
			return attempt, permanentError.Err
		}

		if attempt == maxAttempts {
			break
		}

		delay := schedule.NextBackOff()
		retrier.logger.Warn(attemptFailedLogMessageConstant,
			zap.String(logFieldOperationConstant, operationName),
			zap.Int(logFieldAttemptConstant, attempt),
			zap.Int(logFieldMaxAttemptsConstant, maxAttempts),
			zap.Duration(logFieldBackoffConstant, delay),
			zap.Error(lastError),
		)
		if sleepError := retrier.sleeper(executionContext, delay); sleepError != nil {
			return attempt, sleepError
		}
	}

	return maxAttempts, ExhaustedError{Operation: operationName, Attempts: maxAttempts, Cause: lastError}
}
