package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

func TestNextDeliveryDate(t *testing.T) {
	from := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency string
		expected  time.Time
	}{
		{models.FrequencyWeekly, time.Date(2025, 1, 22, 8, 0, 0, 0, time.UTC)},
		{models.FrequencyBiweekly, time.Date(2025, 1, 29, 8, 0, 0, 0, time.UTC)},
		{models.FrequencyMonthly, time.Date(2025, 2, 15, 8, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			next, err := NextDeliveryDate(from, tt.frequency)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, next)
		})
	}
}

func TestNextDeliveryDateInvalidFrequency(t *testing.T) {
	_, err := NextDeliveryDate(time.Now(), "daily")
	assert.ErrorIs(t, err, ErrInvalidFrequency)

	_, err = NextDeliveryDate(time.Now(), "")
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}
