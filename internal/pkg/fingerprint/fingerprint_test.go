package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextDeterministic(t *testing.T) {
	t.Parallel()
	a := Text("Revenue grew 10%.\n")
	b := Text("Revenue grew 10%.\n")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestEqual(t *testing.T) {
	t.Parallel()
	assert.True(t, Equal("same", "same"))
	assert.False(t, Equal("same", "same "))
	assert.False(t, Equal("", "x"))
}
