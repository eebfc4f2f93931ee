package repository

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.333, round3(1.0/3.0))
	assert.Equal(t, -0.333, round3(-1.0/3.0))
	assert.Equal(t, 0.5, round3(0.5))
	assert.Equal(t, 0.001, round3(0.0005))
	assert.Equal(t, 0.0, round3(0))
}
