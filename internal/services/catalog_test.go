package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

func validTestProduct() *models.Product {
	return &models.Product{
		Name:                       "Bamboo Toothbrush",
		Price:                      4.99,
		Category:                   "personal-care",
		RecycledMaterialPercentage: 80,
		EnergyEfficiencyRating:     0,
		CarbonFootprint:            10,
		SustainablePackaging:       true,
		ExpectedLifespan:           2,
	}
}

func TestTrendingRequiresHighScore(t *testing.T) {
	assert.Equal(t, 70, trendingMinScore)
}

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *models.Product)
		wantErr bool
	}{
		{
			name:    "valid product",
			mutate:  func(p *models.Product) {},
			wantErr: false,
		},
		{
			name:    "missing name",
			mutate:  func(p *models.Product) { p.Name = "" },
			wantErr: true,
		},
		{
			name:    "zero price",
			mutate:  func(p *models.Product) { p.Price = 0 },
			wantErr: true,
		},
		{
			name:    "negative price",
			mutate:  func(p *models.Product) { p.Price = -1 },
			wantErr: true,
		},
		{
			name:    "missing category",
			mutate:  func(p *models.Product) { p.Category = "" },
			wantErr: true,
		},
		{
			name:    "recycled percentage above 100",
			mutate:  func(p *models.Product) { p.RecycledMaterialPercentage = 101 },
			wantErr: true,
		},
		{
			name:    "energy rating above 10",
			mutate:  func(p *models.Product) { p.EnergyEfficiencyRating = 11 },
			wantErr: true,
		},
		{
			name:    "negative carbon footprint",
			mutate:  func(p *models.Product) { p.CarbonFootprint = -5 },
			wantErr: true,
		},
		{
			name:    "lifespan above 10",
			mutate:  func(p *models.Product) { p.ExpectedLifespan = 12 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validTestProduct()
			tt.mutate(p)

			err := validateProduct(p)
			if tt.wantErr {
				assert.Error(t, err)
				_, ok := IsValidationError(err)
				assert.True(t, ok, "expected a validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
