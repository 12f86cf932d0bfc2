package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/repository"
)

// CommunityService manages sustainability posts, likes and comments
type CommunityService struct {
	repo     *repository.CommunityRepository
	users    *repository.UserRepository
	notifier *NotificationService
	logger   *logrus.Logger
}

// NewCommunityService creates a new community service
func NewCommunityService(
	repo *repository.CommunityRepository,
	users *repository.UserRepository,
	notifier *NotificationService,
	logger *logrus.Logger,
) *CommunityService {
	return &CommunityService{repo: repo, users: users, notifier: notifier, logger: logger}
}

// CreatePost publishes a goal or achievement post
func (s *CommunityService) CreatePost(ctx context.Context, userID uuid.UUID, post *models.SustainabilityPost) (*models.SustainabilityPost, error) {
	if post.Type != "goal" && post.Type != "achievement" {
		return nil, NewValidationError("type", "must be goal or achievement")
	}
	if post.Title == "" {
		return nil, NewValidationError("title", "is required")
	}
	if post.Content == "" {
		return nil, NewValidationError("content", "is required")
	}

	post.UserID = userID
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// ListPosts returns all posts with their authors and comments, newest first
func (s *CommunityService) ListPosts(ctx context.Context) ([]models.SustainabilityPost, error) {
	return s.repo.ListPosts(ctx)
}

// GetPost returns a single post with its comments
func (s *CommunityService) GetPost(ctx context.Context, id uuid.UUID) (*models.SustainabilityPost, error) {
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("post")
		}
		return nil, err
	}
	return post, nil
}

// LikePost increments a post's like counter and returns the new count
func (s *CommunityService) LikePost(ctx context.Context, id uuid.UUID) (int, error) {
	likes, err := s.repo.LikePost(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, NewNotFoundError("post")
		}
		return 0, err
	}
	return likes, nil
}

// CreateComment adds a comment to a post
func (s *CommunityService) CreateComment(ctx context.Context, userID, postID uuid.UUID, content string) (*models.Comment, error) {
	if content == "" {
		return nil, NewValidationError("content", "is required")
	}

	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFoundError("post")
		}
		return nil, err
	}

	comment, err := s.repo.CreateComment(ctx, &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if post.UserID != userID {
		commenter, err := s.users.GetByID(ctx, userID)
		name := "Someone"
		if err == nil {
			name = commenter.Name
		}
		message := fmt.Sprintf("%s commented on your sustainability post: %q", name, post.Title)
		if _, err := s.notifier.DispatchToUser(ctx, post.UserID, "New comment", message, NotificationTypeComment, map[string]string{
			"post_id": post.ID.String(),
		}); err != nil {
			s.logger.WithError(err).WithField("post_id", post.ID).Warn("Failed to store comment notification")
		}
	}

	return comment, nil
}
