package roomid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReturnsSixDigits(t *testing.T) {
	id, err := Generate(func(string) bool { return false })
	require.NoError(t, err)
	assert.Len(t, id, 6)
}

func TestGenerateExhausted(t *testing.T) {
	_, err := Generate(func(string) bool { return true })
	assert.ErrorIs(t, err, ErrExhausted)
}
