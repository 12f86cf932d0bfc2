package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

func TestTradeInTransitions(t *testing.T) {
	allowed := func(from, to string) bool {
		for _, next := range tradeInTransitions[from] {
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
		{models.TradeInStatusPending, models.TradeInStatusApproved, true},
		{models.TradeInStatusPending, models.TradeInStatusRejected, true},
		{models.TradeInStatusPending, models.TradeInStatusCompleted, false},
		{models.TradeInStatusApproved, models.TradeInStatusCompleted, true},
		{models.TradeInStatusApproved, models.TradeInStatusRejected, false},
		{models.TradeInStatusRejected, models.TradeInStatusApproved, false},
		{models.TradeInStatusCompleted, models.TradeInStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, allowed(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
