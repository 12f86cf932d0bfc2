package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Order statuses. An order only moves forward: pending -> paid -> delivered.
// Cancelled is a terminal failure state.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Subscription statuses.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPaused    = "paused"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription box delivery frequencies.
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// Sustainability goal statuses.
const (
	GoalStatusInProgress = "in_progress"
	GoalStatusCompleted  = "completed"
	GoalStatusFailed     = "failed"
)

// Trade-in request statuses.
const (
	TradeInStatusPending   = "pending"
	TradeInStatusApproved  = "approved"
	TradeInStatusRejected  = "rejected"
	TradeInStatusCompleted = "completed"
)

// User is a registered shopper. SustainabilityScore is a rolling 0-100
// average over purchased product scores; Level is always derived from
// SustainabilityPoints (floor(points/100)+1).
type User struct {
	ID                   uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Email                string         `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	Name                 string         `json:"name" gorm:"not null" validate:"required,min=2,max=255"`
	PasswordHash         string         `json:"-" gorm:"not null"`
	IsAdmin              bool           `json:"is_admin" gorm:"default:false"`
	SustainabilityScore  int            `json:"sustainability_score" gorm:"default:0"`
	SustainabilityPoints int            `json:"sustainability_points" gorm:"default:0"`
	Level                int            `json:"level" gorm:"default:1"`
	Achievements         pq.StringArray `json:"achievements" gorm:"type:text[];default:'{}'"`
	FCMToken             *string        `json:"fcm_token,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// HasAchievement reports whether the achievement id has already been earned.
func (u *User) HasAchievement(id uuid.UUID) bool {
	s := id.String()
	for _, a := range u.Achievements {
		if a == s {
			return true
		}
	}
	return false
}

// Product is a catalog entry. SustainabilityScore is computed from the five
// factor fields on create/update; MinSustainabilityScore is floor(score*0.9).
type Product struct {
	ID                          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name                        string         `json:"name" gorm:"not null;index" validate:"required"`
	Description                 string         `json:"description"`
	Price                       float64        `json:"price" gorm:"type:decimal(10,2);not null" validate:"required,gt=0"`
	Stock                       int            `json:"stock" gorm:"not null;default:0"`
	Category                    string         `json:"category" gorm:"not null;index" validate:"required"`
	Tags                        pq.StringArray `json:"tags" gorm:"type:text[];default:'{}'"`
	RecycledMaterialPercentage  float64        `json:"recycled_material_percentage" gorm:"not null;default:0"`
	EnergyEfficiencyRating      float64        `json:"energy_efficiency_rating" gorm:"not null;default:0"`
	CarbonFootprint             float64        `json:"carbon_footprint" gorm:"not null;default:0"`
	SustainablePackaging        bool           `json:"sustainable_packaging" gorm:"not null;default:false"`
	ExpectedLifespan            float64        `json:"expected_lifespan" gorm:"not null;default:1"`
	SustainabilityScore         int            `json:"sustainability_score" gorm:"not null;index"`
	MinSustainabilityScore      int            `json:"min_sustainability_score" gorm:"not null;default:0"`
	AverageRating               float64        `json:"average_rating" gorm:"default:0"`
	AverageSustainabilityRating float64        `json:"average_sustainability_rating" gorm:"default:0"`
	CreatedAt                   time.Time      `json:"created_at"`
	UpdatedAt                   time.Time      `json:"updated_at"`
}

// Score change sources recorded in ScoreHistory
const (
	ScoreSourceFactors = "factors"
	ScoreSourceReviews = "reviews"
)

// ScoreHistory records each change to a product's sustainability score
type ScoreHistory struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Score     int       `json:"score" gorm:"not null"`
	Source    string    `json:"source" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Order belongs to one user and carries a many-to-many product set.
type Order struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID          uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	User            User      `json:"-" gorm:"foreignKey:UserID"`
	TotalAmount     float64   `json:"total_amount" gorm:"type:decimal(10,2);not null" validate:"required,gt=0"`
	Status          string    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentIntentID string    `json:"payment_intent_id" gorm:"index"`
	Products        []Product `json:"products,omitempty" gorm:"many2many:order_products"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Review links a user to a product with a quality and a sustainability rating.
type Review struct {
	ID                   uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID               uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	User                 *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProductID            uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Rating               int       `json:"rating" gorm:"not null" validate:"required,min=1,max=5"`
	Title                string    `json:"title" gorm:"not null" validate:"required"`
	Content              string    `json:"content" gorm:"not null" validate:"required"`
	SustainabilityRating int       `json:"sustainability_rating" gorm:"not null" validate:"required,min=1,max=5"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// SubscriptionBox is a recurring-delivery bundle of products.
type SubscriptionBox struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name        string    `json:"name" gorm:"not null" validate:"required"`
	Description string    `json:"description"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null" validate:"required,gt=0"`
	Frequency   string    `json:"frequency" gorm:"type:varchar(20);not null" validate:"required,oneof=weekly biweekly monthly"`
	Products    []Product `json:"products,omitempty" gorm:"many2many:subscription_box_products"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Subscription ties a user to a box. NextDeliveryDate is advanced by the
// box frequency each time a delivery is processed.
type Subscription struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID            uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	User              User            `json:"-" gorm:"foreignKey:UserID"`
	SubscriptionBoxID uuid.UUID       `json:"subscription_box_id" gorm:"type:uuid;not null;index"`
	SubscriptionBox   SubscriptionBox `json:"subscription_box,omitempty" gorm:"foreignKey:SubscriptionBoxID"`
	Status            string          `json:"status" gorm:"type:varchar(20);default:'active';index"`
	NextDeliveryDate  time.Time       `json:"next_delivery_date" gorm:"not null;index"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// SustainabilityGoal is a user-defined target with terminal completed/failed states.
type SustainabilityGoal struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID       uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title        string     `json:"title" gorm:"not null" validate:"required"`
	Description  string     `json:"description"`
	TargetValue  float64    `json:"target_value" gorm:"not null" validate:"required,gt=0"`
	CurrentValue float64    `json:"current_value" gorm:"not null;default:0"`
	Unit         string     `json:"unit" gorm:"not null" validate:"required"`
	Category     string     `json:"category" gorm:"type:varchar(30);not null" validate:"required,oneof=energy water waste transportation consumption other"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Status       string     `json:"status" gorm:"type:varchar(20);default:'in_progress';index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SustainabilityPost is a community post sharing a goal or an achievement.
type SustainabilityPost struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Title     string    `json:"title" gorm:"not null" validate:"required"`
	Content   string    `json:"content" gorm:"not null" validate:"required"`
	Type      string    `json:"type" gorm:"type:varchar(20);not null" validate:"required,oneof=goal achievement"`
	Likes     int       `json:"likes" gorm:"default:0"`
	Comments  []Comment `json:"comments,omitempty" gorm:"foreignKey:PostID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a reply on a community post.
type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	PostID    uuid.UUID `json:"post_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Content   string    `json:"content" gorm:"not null" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TradeIn is a request to return a used product for credit.
type TradeIn struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	User           User      `json:"-" gorm:"foreignKey:UserID"`
	ProductName    string    `json:"product_name" gorm:"not null" validate:"required"`
	Condition      string    `json:"condition" gorm:"type:varchar(20);not null" validate:"required,oneof=like_new good fair poor"`
	Description    string    `json:"description"`
	EstimatedValue float64   `json:"estimated_value" gorm:"type:decimal(10,2);default:0"`
	Status         string    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Achievement is a gamification badge definition. Name doubles as the key
// into the predicate registry in the gamification service.
type Achievement struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null" validate:"required"`
	Description string    `json:"description" gorm:"not null" validate:"required"`
	PointValue  int       `json:"point_value" gorm:"not null"`
	Icon        string    `json:"icon" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Notification is the persisted record of a user-facing message. Channel
// delivery (push/email) is best-effort; the row itself must exist.
type Notification struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Message   string         `json:"message" gorm:"not null"`
	Type      string         `json:"type" gorm:"type:varchar(40);not null;default:'info';index"`
	Read      bool           `json:"read" gorm:"default:false"`
	Data      datatypes.JSON `json:"data,omitempty" gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
