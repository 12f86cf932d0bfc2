package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

func TestComputeProductScore(t *testing.T) {
	tests := []struct {
		name     string
		product  models.Product
		expected int
	}{
		{
			name:     "zero factors score from carbon only",
			product:  models.Product{},
			expected: 40,
		},
		{
			name: "all factors at maximum capped at 100",
			product: models.Product{
				RecycledMaterialPercentage: 100,
				EnergyEfficiencyRating:     10,
				CarbonFootprint:            0,
				SustainablePackaging:       true,
				ExpectedLifespan:           10,
			},
			expected: 100,
		},
		{
			name: "mixed factors without packaging",
			product: models.Product{
				RecycledMaterialPercentage: 40,
				EnergyEfficiencyRating:     5,
				CarbonFootprint:            60,
				SustainablePackaging:       false,
				ExpectedLifespan:           4,
			},
			expected: 59,
		},
		{
			name: "sustainable packaging adds twenty",
			product: models.Product{
				RecycledMaterialPercentage: 40,
				EnergyEfficiencyRating:     5,
				CarbonFootprint:            60,
				SustainablePackaging:       true,
				ExpectedLifespan:           4,
			},
			expected: 79,
		},
		{
			name: "maximum carbon footprint contributes nothing",
			product: models.Product{
				CarbonFootprint: 100,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeProductScore(&tt.product))
		})
	}
}

func TestComputeMinScore(t *testing.T) {
	tests := []struct {
		score    int
		expected int
	}{
		{100, 90},
		{95, 85},
		{59, 53},
		{1, 0},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ComputeMinScore(tt.score))
	}
}

func TestBlendUserScore(t *testing.T) {
	t.Run("empty purchase keeps current score", func(t *testing.T) {
		assert.Equal(t, 70, BlendUserScore(70, nil))
		assert.Equal(t, 70, BlendUserScore(70, []models.Product{}))
	})

	t.Run("averages purchase scores into current", func(t *testing.T) {
		products := []models.Product{
			{SustainabilityScore: 80},
			{SustainabilityScore: 90},
		}
		// avg 85, (70+85)/2 = 77.5 rounds to 78
		assert.Equal(t, 78, BlendUserScore(70, products))
	})

	t.Run("first purchase from zero", func(t *testing.T) {
		products := []models.Product{{SustainabilityScore: 50}}
		assert.Equal(t, 25, BlendUserScore(0, products))
	})
}
