package common

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type tempError struct{}

func (tempError) Error() string   { return "temporarily unavailable" }
func (tempError) Temporary() bool { return true }

func TestWithRetrySucceedsWithinBudget(t *testing.T) {
	attempts := 0
	err := WithRetry(func() error {
		attempts++
		if attempts < 3 {
			return tempError{}
		}
		return nil
	}, MirrorWriteRetries)

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := fmt.Errorf("constraint violated")
	err := WithRetry(func() error {
		attempts++
		return permanent
	}, MirrorWriteRetries)

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	attempts := 0
	err := WithRetry(func() error {
		attempts++
		return tempError{}
	}, MirrorWriteRetries)

	assert.Error(t, err)
	assert.Equal(t, MirrorWriteRetries, attempts)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(tempError{}))
	assert.True(t, IsRetryable(sql.ErrConnDone))
	assert.True(t, IsRetryable(sql.ErrTxDone))
	assert.False(t, IsRetryable(fmt.Errorf("parse error")))
}
