package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/repository"
)

// Impact estimation factors applied per purchased product.
const (
	carbonSavedPerFootprintPoint = 0.1 // kg CO2 per avoided footprint point
	waterSavedPerScorePoint      = 2.0 // liters per sustainability score point
	plasticReducedPerPackage     = 0.1 // kg per sustainably packaged product
)

// AnalyticsService produces the admin dashboard and per-user impact reports
type AnalyticsService struct {
	users     *repository.UserRepository
	products  *repository.ProductRepository
	orders    *repository.OrderRepository
	community *repository.CommunityRepository
	goals     *repository.GoalRepository
	logger    *logrus.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	users *repository.UserRepository,
	products *repository.ProductRepository,
	orders *repository.OrderRepository,
	community *repository.CommunityRepository,
	goals *repository.GoalRepository,
	logger *logrus.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		users:     users,
		products:  products,
		orders:    orders,
		community: community,
		goals:     goals,
		logger:    logger,
	}
}

// DashboardStats is the admin overview
type DashboardStats struct {
	TotalUsers     int64            `json:"total_users"`
	TotalProducts  int64            `json:"total_products"`
	TotalOrders    int64            `json:"total_orders"`
	TotalRevenue   float64          `json:"total_revenue"`
	NewUsers30d    int64            `json:"new_users_30d"`
	NewOrders30d   int64            `json:"new_orders_30d"`
	CommunityPosts int64            `json:"community_posts"`
	TopProducts    []models.Product `json:"top_products"`
}

// Dashboard aggregates platform-wide counts for the admin overview
func (s *AnalyticsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	since := time.Now().AddDate(0, 0, -30)

	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	totalProducts, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	totalOrders, err := s.orders.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	revenue, err := s.orders.TotalRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	newUsers, err := s.users.CountCreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count new users: %w", err)
	}
	newOrders, err := s.orders.CountCreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count new orders: %w", err)
	}
	posts, err := s.community.CountPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	topProducts, err := s.products.TopSustainable(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}

	return &DashboardStats{
		TotalUsers:     totalUsers,
		TotalProducts:  totalProducts,
		TotalOrders:    totalOrders,
		TotalRevenue:   revenue,
		NewUsers30d:    newUsers,
		NewOrders30d:   newOrders,
		CommunityPosts: posts,
		TopProducts:    topProducts,
	}, nil
}

// ImpactReport estimates a user's environmental impact from their purchases
type ImpactReport struct {
	SustainabilityScore int     `json:"sustainability_score"`
	TotalOrders         int64   `json:"total_orders"`
	TotalSpent          float64 `json:"total_spent"`
	AverageOrderValue   float64 `json:"average_order_value"`
	CarbonSavedKg       float64 `json:"carbon_saved_kg"`
	WaterSavedLiters    float64 `json:"water_saved_liters"`
	PlasticReducedKg    float64 `json:"plastic_reduced_kg"`
	GoalsCompleted      int64   `json:"goals_completed"`
	GoalsInProgress     int64   `json:"goals_in_progress"`
	Rank                int64   `json:"rank"`
	Percentile          float64 `json:"percentile"`
}

// UserImpact computes a user's impact report. Each purchased product
// contributes once per purchase.
func (s *AnalyticsService) UserImpact(ctx context.Context, userID uuid.UUID) (*ImpactReport, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("user")
		}
		return nil, err
	}

	orderCount, err := s.orders.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	totalSpent, avgOrder, err := s.orders.SpendByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum spend: %w", err)
	}
	purchased, err := s.orders.PurchasedProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchased products: %w", err)
	}

	carbonSaved := 0.0
	waterSaved := 0.0
	plasticReduced := 0.0
	for _, p := range purchased {
		carbonSaved += (100 - p.CarbonFootprint) * carbonSavedPerFootprintPoint
		waterSaved += float64(p.SustainabilityScore) * waterSavedPerScorePoint
		if p.SustainablePackaging {
			plasticReduced += plasticReducedPerPackage
		}
	}

	goalsCompleted, err := s.goals.CountByUser(ctx, userID, models.GoalStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed goals: %w", err)
	}
	goalsInProgress, err := s.goals.CountByUser(ctx, userID, models.GoalStatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to count active goals: %w", err)
	}

	rank, total, err := s.users.RankByScore(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rank: %w", err)
	}

	percentile := 0.0
	if total > 0 {
		percentile = math.Round(float64(total-rank)/float64(total)*1000) / 10
	}

	return &ImpactReport{
		SustainabilityScore: user.SustainabilityScore,
		TotalOrders:         orderCount,
		TotalSpent:          totalSpent,
		AverageOrderValue:   avgOrder,
		CarbonSavedKg:       math.Round(carbonSaved*10) / 10,
		WaterSavedLiters:    math.Round(waterSaved*10) / 10,
		PlasticReducedKg:    math.Round(plasticReduced*10) / 10,
		GoalsCompleted:      goalsCompleted,
		GoalsInProgress:     goalsInProgress,
		Rank:                rank,
		Percentile:          percentile,
	}, nil
}
