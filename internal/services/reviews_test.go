package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundToOneDecimal(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{4.0, 4.0},
		{4.25, 4.3},
		{4.24, 4.2},
		{3.333333, 3.3},
		{0, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, roundToOneDecimal(tt.in), 0.0001)
	}
}
