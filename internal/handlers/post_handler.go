package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/waypost/backend/internal/models"
	"github.com/waypost/backend/internal/moderation"
	"github.com/waypost/backend/internal/repository"
)

type PostHandler struct {
	postRepo    *repository.PostRepository
	journeyRepo *repository.JourneyRepository
	modService  *moderation.Service
}

func NewPostHandler(postRepo *repository.PostRepository, journeyRepo *repository.JourneyRepository, modService *moderation.Service) *PostHandler {
	return &PostHandler{postRepo: postRepo, journeyRepo: journeyRepo, modService: modService}
}

// postCandidates builds the ordered gate input for a post: title, then the
// flattened body text, then each embedded image in document order. The gate
// stops at the first block, so an image violation is never evaluated when
// the title already failed.
func postCandidates(userID uuid.UUID, postID *uuid.UUID, title string, content models.RichDoc) []models.ModerationCandidate {
	candidates := []models.ModerationCandidate{
		{UserID: userID, ContentType: models.ContentTypePostTitle, RelatedEntityID: postID, Text: title},
		{UserID: userID, ContentType: models.ContentTypePostContent, RelatedEntityID: postID, Text: moderation.ExtractText(content)},
	}
	for _, url := range moderation.ExtractImageURLs(content) {
		candidates = append(candidates, models.ModerationCandidate{
			UserID:          userID,
			ContentType:     models.ContentTypePostImage,
			RelatedEntityID: postID,
			ImageURL:        url,
		})
	}
	return candidates
}

// CreatePost creates a post inside a journey owned by the caller.
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	journey, err := h.journeyRepo.GetByID(req.JourneyID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Journey not found")
		return
	}
	if journey.OwnerID != uid {
		ErrorResponse(c, http.StatusForbidden, "Only the journey owner can add posts")
		return
	}

	post := &models.Post{
		ID:        uuid.New(),
		JourneyID: req.JourneyID,
		AuthorID:  uid,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := post.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	candidates := postCandidates(uid, &post.ID, post.Title, post.Content)
	if block := h.modService.Enforce(c.Request.Context(), candidates...); block != nil {
		BlockedResponse(c, block)
		return
	}

	if err := h.postRepo.Create(post); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create post")
		return
	}

	for _, cand := range candidates {
		h.modService.LogCandidate(c.Request.Context(), cand)
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost returns a post by id.
func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid post id")
		return
	}

	post, err := h.postRepo.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Post not found")
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetJourneyPosts lists the posts of a journey.
func (h *PostHandler) GetJourneyPosts(c *gin.Context) {
	journeyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid journey id")
		return
	}

	posts, err := h.postRepo.ListByJourney(journeyID, 50)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to list posts")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// UpdatePost updates a post after re-running the moderation gate.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid post id")
		return
	}

	var req models.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	post, err := h.postRepo.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Post not found")
		return
	}
	if post.AuthorID != uid {
		ErrorResponse(c, http.StatusForbidden, "Only the author can update a post")
		return
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = req.Content
	}
	if err := post.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	candidates := postCandidates(uid, &post.ID, post.Title, post.Content)
	if block := h.modService.Enforce(c.Request.Context(), candidates...); block != nil {
		BlockedResponse(c, block)
		return
	}

	if err := h.postRepo.Update(post); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to update post")
		return
	}

	for _, cand := range candidates {
		h.modService.LogCandidate(c.Request.Context(), cand)
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post written by the caller.
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid post id")
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	post, err := h.postRepo.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Post not found")
		return
	}
	if post.AuthorID != uid {
		ErrorResponse(c, http.StatusForbidden, "Only the author can delete a post")
		return
	}

	if err := h.postRepo.Delete(id); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}
