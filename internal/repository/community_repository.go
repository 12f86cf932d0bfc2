package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecolaura/ecolaura-api/internal/models"
)

// CommunityRepository handles sustainability posts and comments
type CommunityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *gorm.DB) *CommunityRepository {
	return &CommunityRepository{db: db}
}

// CreatePost persists a new post
func (r *CommunityRepository) CreatePost(ctx context.Context, post *models.SustainabilityPost) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetPostByID retrieves a post with its author
func (r *CommunityRepository) GetPostByID(ctx context.Context, id uuid.UUID) (*models.SustainabilityPost, error) {
	var post models.SustainabilityPost
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// ListPosts returns all posts with authors and comments, newest first
func (r *CommunityRepository) ListPosts(ctx context.Context) ([]models.SustainabilityPost, error) {
	var posts []models.SustainabilityPost
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Preload("Comments").
		Preload("Comments.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// LikePost atomically increments a post's like counter and returns the new count
func (r *CommunityRepository) LikePost(ctx context.Context, id uuid.UUID) (int, error) {
	result := r.db.WithContext(ctx).Model(&models.SustainabilityPost{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to like post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}

	var post models.SustainabilityPost
	if err := r.db.WithContext(ctx).Select("likes").First(&post, "id = ?", id).Error; err != nil {
		return 0, fmt.Errorf("failed to reload post likes: %w", err)
	}
	return post.Likes, nil
}

// CreateComment persists a comment and returns it with the author preloaded
func (r *CommunityRepository) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	var created models.Comment
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		First(&created, "id = ?", comment.ID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload comment: %w", err)
	}
	return &created, nil
}

// CountPosts returns the total number of posts
func (r *CommunityRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SustainabilityPost{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}
