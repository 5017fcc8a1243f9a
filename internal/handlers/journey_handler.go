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

type JourneyHandler struct {
	journeyRepo *repository.JourneyRepository
	modService  *moderation.Service
}

func NewJourneyHandler(journeyRepo *repository.JourneyRepository, modService *moderation.Service) *JourneyHandler {
	return &JourneyHandler{journeyRepo: journeyRepo, modService: modService}
}

// journeyCandidates builds the ordered gate input: title first, then
// description.
func journeyCandidates(userID uuid.UUID, journeyID *uuid.UUID, title, description string) []models.ModerationCandidate {
	return []models.ModerationCandidate{
		{UserID: userID, ContentType: models.ContentTypeJourneyTitle, RelatedEntityID: journeyID, Text: title},
		{UserID: userID, ContentType: models.ContentTypeJourneyDescription, RelatedEntityID: journeyID, Text: description},
	}
}

// CreateJourney creates a journey after its title and description clear the
// moderation gate.
func (h *JourneyHandler) CreateJourney(c *gin.Context) {
	var req models.CreateJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	journey := &models.Journey{
		ID:          uuid.New(),
		OwnerID:     uid,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := journey.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	candidates := journeyCandidates(uid, &journey.ID, req.Title, req.Description)
	if block := h.modService.Enforce(c.Request.Context(), candidates...); block != nil {
		BlockedResponse(c, block)
		return
	}

	if err := h.journeyRepo.Create(journey); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to create journey")
		return
	}

	for _, cand := range candidates {
		h.modService.LogCandidate(c.Request.Context(), cand)
	}

	c.JSON(http.StatusCreated, journey)
}

// GetJourney returns a journey by id.
func (h *JourneyHandler) GetJourney(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid journey id")
		return
	}

	journey, err := h.journeyRepo.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Journey not found")
		return
	}
	c.JSON(http.StatusOK, journey)
}

// GetJourneys lists the caller's journeys.
func (h *JourneyHandler) GetJourneys(c *gin.Context) {
	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	journeys, err := h.journeyRepo.ListByOwner(uid, 50)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to list journeys")
		return
	}
	c.JSON(http.StatusOK, journeys)
}

// UpdateJourney updates title/description after re-running the gate on the
// changed fields.
func (h *JourneyHandler) UpdateJourney(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid journey id")
		return
	}

	var req models.UpdateJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	journey, err := h.journeyRepo.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Journey not found")
		return
	}
	if journey.OwnerID != uid {
		ErrorResponse(c, http.StatusForbidden, "Only the owner can update a journey")
		return
	}

	if req.Title != nil {
		journey.Title = *req.Title
	}
	if req.Description != nil {
		journey.Description = *req.Description
	}
	if err := journey.Validate(); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	candidates := journeyCandidates(uid, &journey.ID, journey.Title, journey.Description)
	if block := h.modService.Enforce(c.Request.Context(), candidates...); block != nil {
		BlockedResponse(c, block)
		return
	}

	if err := h.journeyRepo.Update(journey); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to update journey")
		return
	}

	for _, cand := range candidates {
		h.modService.LogCandidate(c.Request.Context(), cand)
	}

	c.JSON(http.StatusOK, journey)
}

// DeleteJourney removes a journey owned by the caller.
func (h *JourneyHandler) DeleteJourney(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid journey id")
		return
	}

	userID, _ := c.Get("user_id")
	uid := userID.(uuid.UUID)

	journey, err := h.journeyRepo.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Journey not found")
		return
	}
	if journey.OwnerID != uid {
		ErrorResponse(c, http.StatusForbidden, "Only the owner can delete a journey")
		return
	}

	if err := h.journeyRepo.Delete(id); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete journey")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "journey deleted"})
}
