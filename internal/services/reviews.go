package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/repository"
)

// ReviewService manages product reviews and the derived product ratings
type ReviewService struct {
	repo         *repository.ReviewRepository
	products     *repository.ProductRepository
	gamification *GamificationService
	logger       *logrus.Logger
}

// NewReviewService creates a new review service
func NewReviewService(
	repo *repository.ReviewRepository,
	products *repository.ProductRepository,
	gamification *GamificationService,
	logger *logrus.Logger,
) *ReviewService {
	return &ReviewService{
		repo:         repo,
		products:     products,
		gamification: gamification,
		logger:       logger,
	}
}

// Create records a review, refreshes the product's rating aggregates and
// re-evaluates the reviewer's achievements
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, review *models.Review) (*models.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, NewValidationError("rating", "must be between 1 and 5")
	}
	if review.SustainabilityRating < 1 || review.SustainabilityRating > 5 {
		return nil, NewValidationError("sustainability_rating", "must be between 1 and 5")
	}

	if _, err := s.products.GetByID(ctx, review.ProductID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("product")
		}
		return nil, err
	}

	review.UserID = userID
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.refreshProductRatings(ctx, review.ProductID); err != nil {
		s.logger.WithError(err).WithField("product_id", review.ProductID).Error("Failed to refresh product ratings")
	}

	user, err := s.gamification.users.GetByID(ctx, userID)
	if err == nil {
		if err := s.gamification.CheckAchievements(ctx, user); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Achievement check failed")
		}
	}

	return review, nil
}

// ListByProduct returns all reviews for a product, newest first
func (s *ReviewService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	return s.repo.ListByProduct(ctx, productID)
}

// Update edits the caller's own review and refreshes the product aggregates
func (s *ReviewService) Update(ctx context.Context, id, userID uuid.UUID, rating, sustainabilityRating int, title, content string) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("review")
		}
		return nil, err
	}
	if review.UserID != userID {
		return nil, NewNotFoundError("review")
	}

	if rating < 1 || rating > 5 {
		return nil, NewValidationError("rating", "must be between 1 and 5")
	}
	if sustainabilityRating < 1 || sustainabilityRating > 5 {
		return nil, NewValidationError("sustainability_rating", "must be between 1 and 5")
	}

	review.Rating = rating
	review.SustainabilityRating = sustainabilityRating
	review.Title = title
	review.Content = content

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	if err := s.refreshProductRatings(ctx, review.ProductID); err != nil {
		s.logger.WithError(err).WithField("product_id", review.ProductID).Error("Failed to refresh product ratings")
	}

	return review, nil
}

// Delete removes a review. Only the author or an admin may delete it.
func (s *ReviewService) Delete(ctx context.Context, id, userID uuid.UUID, isAdmin bool) error {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFoundError("review")
		}
		return err
	}
	if !isAdmin && review.UserID != userID {
		return NewNotFoundError("review")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFoundError("review")
		}
		return err
	}

	if err := s.refreshProductRatings(ctx, review.ProductID); err != nil {
		s.logger.WithError(err).WithField("product_id", review.ProductID).Error("Failed to refresh product ratings")
	}

	return nil
}

// refreshProductRatings recomputes a product's average ratings (one decimal)
// and nudges its sustainability score toward the community's rating, never
// below the product's score floor.
func (s *ReviewService) refreshProductRatings(ctx context.Context, productID uuid.UUID) error {
	avgRating, avgSustainability, count, err := s.repo.AveragesByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to compute review averages: %w", err)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	avgRating = roundToOneDecimal(avgRating)
	avgSustainability = roundToOneDecimal(avgSustainability)

	if err := s.products.UpdateRatings(ctx, productID, avgRating, avgSustainability); err != nil {
		return fmt.Errorf("failed to update product ratings: %w", err)
	}

	if count == 0 {
		return nil
	}

	// Community rating on a 1-5 scale mapped to 0-100 and blended with the
	// factor-derived score
	implied := avgSustainability * 20
	blended := int(math.Round((float64(product.SustainabilityScore) + implied) / 2))
	if blended < product.MinSustainabilityScore {
		blended = product.MinSustainabilityScore
	}
	if blended > maxSustainabilityScore {
		blended = maxSustainabilityScore
	}

	if blended != product.SustainabilityScore {
		product.SustainabilityScore = blended
		if err := s.products.Update(ctx, product); err != nil {
			return fmt.Errorf("failed to adjust product score: %w", err)
		}
		if err := s.products.RecordScore(ctx, productID, blended, models.ScoreSourceReviews); err != nil {
			s.logger.WithError(err).WithField("product_id", productID).Warn("Failed to record score history")
		}
	}

	return nil
}

func roundToOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
