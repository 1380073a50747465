package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorFormat(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewNetwork("collector", "failed to fetch listing page", cause)

	assert.Equal(t, "[network] collector: failed to fetch listing page - connection refused", err.Error())
	assert.Equal(t, cause, err.Unwrap())

	noCause := NewValidation("detail", "url does not match detail pattern")
	assert.Equal(t, "[validation] detail: url does not match detail pattern", noCause.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewNetwork("client", "timeout", nil).IsRetryable())
	assert.False(t, NewRateLimit("doisporum.net", 60*time.Second).IsRetryable())
	assert.False(t, NewParsing("list", "bad html", nil).IsRetryable())
	assert.False(t, NewValidation("detail", "bad url").IsRetryable())
	assert.False(t, NewRepository("csv", "write failed", nil).IsRetryable())
}

func TestIsType(t *testing.T) {
	err := NewValidation("detail", "bad url")
	assert.True(t, IsType(err, ErrorTypeValidation))
	assert.False(t, IsType(err, ErrorTypeNetwork))

	wrapped := fmt.Errorf("while parsing: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeValidation))

	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeValidation))
	assert.False(t, IsType(nil, ErrorTypeValidation))
}
