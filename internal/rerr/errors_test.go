package rerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageIncludesContext(t *testing.T) {
	err := WithQueue("port.Recv", "eth0", 2, CodeBadRxQueue, "queue index out of range")
	msg := err.Error()
	assert.Contains(t, msg, "queue index out of range")
	assert.Contains(t, msg, "port=eth0")
	assert.Contains(t, msg, "queue=2")
}

func TestIsMatchesByCode(t *testing.T) {
	err := New("pool.Allocate", CodeFailedAllocation, "pool exhausted")
	assert.True(t, Is(err, CodeFailedAllocation))
	assert.False(t, Is(err, CodeBadOffset))
}

func TestWrapPreservesCode(t *testing.T) {
	inner := New("pool.Allocate", CodeFailedAllocation, "pool exhausted")
	wrapped := Wrap("pdu.Allocate", "", inner)
	assert.True(t, Is(wrapped, CodeFailedAllocation))
	assert.ErrorIs(t, wrapped, inner)
}

func TestFormatChain(t *testing.T) {
	inner := errors.New("root cause")
	wrapped := Wrap("context.Init", CodeConfigurationError, inner)
	lines := FormatChain(wrapped)
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "root cause")
	assert.Contains(t, lines[1], "root cause")
}
