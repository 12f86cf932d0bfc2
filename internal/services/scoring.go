package services

import (
	"math"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

// Sustainability factor weights. Carbon footprint contributes inversely:
// a lower footprint yields a higher score.
const (
	weightRecycledMaterials    = 2.0
	weightEnergyEfficiency     = 1.5
	weightCarbonFootprint      = 2.0
	weightSustainablePackaging = 1.0
	weightDurability           = 1.5

	maxSustainabilityScore = 100
)

// ComputeProductScore derives a 0-100 sustainability score from a product's
// raw factors. RecycledMaterialPercentage and CarbonFootprint are percentages,
// EnergyEfficiencyRating and ExpectedLifespan are rated 0-10.
func ComputeProductScore(p *models.Product) int {
	score := 0.0

	score += (p.RecycledMaterialPercentage / 100.0) * weightRecycledMaterials * 20
	score += (p.EnergyEfficiencyRating / 10.0) * weightEnergyEfficiency * 20
	score += ((100.0 - p.CarbonFootprint) / 100.0) * weightCarbonFootprint * 20
	if p.SustainablePackaging {
		score += weightSustainablePackaging * 20
	}
	score += (p.ExpectedLifespan / 10.0) * weightDurability * 20

	rounded := int(math.Round(score))
	if rounded > maxSustainabilityScore {
		return maxSustainabilityScore
	}
	if rounded < 0 {
		return 0
	}
	return rounded
}

// ComputeMinScore is the floor a product's score may not drop below after
// review-driven adjustments.
func ComputeMinScore(score int) int {
	return int(math.Floor(float64(score) * 0.9))
}

// BlendUserScore folds the average score of newly purchased products into a
// user's running sustainability score. An empty purchase leaves the score
// unchanged.
func BlendUserScore(current int, products []models.Product) int {
	if len(products) == 0 {
		return current
	}

	sum := 0
	for _, p := range products {
		sum += p.SustainabilityScore
	}
	avg := float64(sum) / float64(len(products))

	return int(math.Round((float64(current) + avg) / 2))
}
