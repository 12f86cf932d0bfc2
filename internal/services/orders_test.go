package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

func TestOrderStatusTransitions(t *testing.T) {
	allowed := func(from, to string) bool {
		for _, next := range validStatusTransitions[from] {
			if next == to {
				return true
			}
		}
		return false
	}

	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.OrderStatusPending, models.OrderStatusPaid, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusDelivered, false},
		{models.OrderStatusPaid, models.OrderStatusDelivered, true},
		{models.OrderStatusPaid, models.OrderStatusCancelled, true},
		{models.OrderStatusPaid, models.OrderStatusPending, false},
		{models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusPaid, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusPaid, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, allowed(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalOrderStatusesHaveNoSuccessors(t *testing.T) {
	assert.Empty(t, validStatusTransitions[models.OrderStatusDelivered])
	assert.Empty(t, validStatusTransitions[models.OrderStatusCancelled])
}
