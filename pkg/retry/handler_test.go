package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/web-scraper/pkg/failure"
	"github.com/rohmanhakim/web-scraper/pkg/retry"
	"github.com/rohmanhakim/web-scraper/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastParams(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		time.Millisecond,
		42,
		maxAttempts,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, 10*time.Millisecond),
	)
}

type mockError struct {
	msg       string
	retryable bool
}

func (m *mockError) Error() string { return m.msg }

func (m *mockError) Severity() failure.Severity {
	if m.retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (m *mockError) IsRetryable() bool { return m.retryable }

// severityOnlyError has no IsRetryable method.
type severityOnlyError struct {
	severity failure.Severity
}

func (e *severityOnlyError) Error() string              { return "severity only" }
func (e *severityOnlyError) Severity() failure.Severity { return e.severity }

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	calls := 0
	result := retry.Retry(context.Background(), fastParams(3), func(ctx context.Context) (string, failure.ClassifiedError) {
		calls++
		return "body", nil
	})

	require.True(t, result.IsSuccess())
	assert.Equal(t, "body", result.Value())
	assert.Equal(t, 1, result.Attempts())
	assert.Equal(t, 1, calls)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	calls := 0
	result := retry.Retry(context.Background(), fastParams(5), func(ctx context.Context) ([]byte, failure.ClassifiedError) {
		calls++
		if calls < 3 {
			return nil, &mockError{msg: "connection reset", retryable: true}
		}
		return []byte("ok"), nil
	})

	require.True(t, result.IsSuccess())
	assert.Equal(t, []byte("ok"), result.Value())
	assert.Equal(t, 3, result.Attempts())
}

func TestRetry_NonRetryableErrorReturnsImmediately(t *testing.T) {
	calls := 0
	fatal := &mockError{msg: "status 404", retryable: false}

	result := retry.Retry(context.Background(), fastParams(5), func(ctx context.Context) (string, failure.ClassifiedError) {
		calls++
		return "", fatal
	})

	require.True(t, result.IsFailure())
	assert.Same(t, fatal, result.Err())
	assert.Equal(t, 1, result.Attempts())
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustedAttempts(t *testing.T) {
	calls := 0
	last := &mockError{msg: "timeout", retryable: true}

	result := retry.Retry(context.Background(), fastParams(3), func(ctx context.Context) (int, failure.ClassifiedError) {
		calls++
		return 0, last
	})

	require.True(t, result.IsFailure())
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, result.Attempts())
	assert.Zero(t, result.Value())

	var retryErr *retry.RetryError
	require.ErrorAs(t, result.Err(), &retryErr)
	assert.Equal(t, retry.ErrExhaustedAttempts, retryErr.Cause)
	assert.Equal(t, failure.SeverityRecoverable, retryErr.Severity())
	assert.True(t, errors.Is(result.Err(), last))
}

func TestRetry_ZeroAttempts(t *testing.T) {
	calls := 0
	result := retry.Retry(context.Background(), fastParams(0), func(ctx context.Context) (string, failure.ClassifiedError) {
		calls++
		return "", nil
	})

	require.True(t, result.IsFailure())
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, result.Attempts())

	var retryErr *retry.RetryError
	require.ErrorAs(t, result.Err(), &retryErr)
	assert.Equal(t, retry.ErrZeroAttempt, retryErr.Cause)
}

func TestRetry_FallsBackToSeverity(t *testing.T) {
	calls := 0
	result := retry.Retry(context.Background(), fastParams(3), func(ctx context.Context) (string, failure.ClassifiedError) {
		calls++
		if calls == 1 {
			return "", &severityOnlyError{severity: failure.SeverityRecoverable}
		}
		return "", &severityOnlyError{severity: failure.SeverityFatal}
	})

	require.True(t, result.IsFailure())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, result.Attempts())
}

func TestRetry_StopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	params := retry.NewRetryParam(
		0,
		42,
		5,
		timeutil.NewBackoffParam(time.Hour, 2.0, time.Hour),
	)

	calls := 0
	result := retry.Retry(ctx, params, func(ctx context.Context) (string, failure.ClassifiedError) {
		calls++
		cancel()
		return "", &mockError{msg: "flaky", retryable: true}
	})

	require.True(t, result.IsFailure())
	assert.Equal(t, 1, calls)

	var retryErr *retry.RetryError
	require.ErrorAs(t, result.Err(), &retryErr)
	assert.Equal(t, retry.ErrCanceled, retryErr.Cause)
	assert.False(t, failure.IsRecoverable(result.Err()))
}
