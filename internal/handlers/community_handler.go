package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecolaura/ecolaura-api/internal/middleware"
	"github.com/ecolaura/ecolaura-api/internal/models"
	"github.com/ecolaura/ecolaura-api/internal/services"
)

// CommunityHandler handles community post endpoints
type CommunityHandler struct {
	community *services.CommunityService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(community *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{community: community}
}

// CreatePostRequest is the post creation payload
type CreatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=goal achievement"`
}

// CreatePost handles POST /api/community/posts
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	post := &models.SustainabilityPost{
		Title:   req.Title,
		Content: req.Content,
		Type:    req.Type,
	}

	created, err := h.community.CreatePost(c.Request.Context(), userID, post)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Post created", created)
}

// ListPosts handles GET /api/community/posts
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	posts, err := h.community.ListPosts(c.Request.Context())
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Posts retrieved", posts)
}

// GetPost handles GET /api/community/posts/:id
func (h *CommunityHandler) GetPost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid post id", err)
		return
	}

	post, err := h.community.GetPost(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Post retrieved", post)
}

// LikePost handles POST /api/community/posts/:id/like
func (h *CommunityHandler) LikePost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid post id", err)
		return
	}

	likes, err := h.community.LikePost(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Post liked", gin.H{"likes": likes})
}

// CreateCommentRequest is the comment payload
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateComment handles POST /api/community/posts/:id/comments
func (h *CommunityHandler) CreateComment(c *gin.Context) {
	userID, err := middleware.MustUserID(c)
	if err != nil {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid session", err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid post id", err)
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	comment, err := h.community.CreateComment(c.Request.Context(), userID, postID, req.Content)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Comment created", comment)
}
