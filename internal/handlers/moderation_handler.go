package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/waypost/backend/internal/models"
	"github.com/waypost/backend/internal/repository"
)

var errUnsupportedDelete = errors.New("content type has no deletable entity")

// ModerationStore is the queue surface the admin workflow needs.
type ModerationStore interface {
	GetByID(id uuid.UUID) (*models.ModerationLogEntry, error)
	List(status models.ModerationStatus, limit, offset int) ([]models.ModerationLogEntry, error)
	Review(id uuid.UUID, status models.ModerationStatus, reviewedBy uuid.UUID) error
	BulkReview(ids []uuid.UUID, status models.ModerationStatus, reviewedBy uuid.UUID) (int64, error)
	MarkActionTaken(id uuid.UUID, reviewedBy uuid.UUID) error
}

// UserStore is the user surface enforcement actions act on.
type UserStore interface {
	GetByID(id uuid.UUID) (*models.User, error)
	SetBanned(id uuid.UUID, banned bool) error
	SetAdmin(id uuid.UUID, isAdmin bool) error
	CountActiveAdmins() (int, error)
	RedactBio(id uuid.UUID) error
	ReplaceUsername(id uuid.UUID, username string) error
	Delete(id uuid.UUID) error
}

// ContentStore deletes flagged content.
type ContentStore interface {
	DeletePost(id uuid.UUID) error
	DeleteJourney(id uuid.UUID) error
	DeleteAllByUser(userID uuid.UUID) error
}

// ContentDeleter adapts the post and journey repositories to ContentStore.
type ContentDeleter struct {
	posts    *repository.PostRepository
	journeys *repository.JourneyRepository
}

func NewContentDeleter(posts *repository.PostRepository, journeys *repository.JourneyRepository) *ContentDeleter {
	return &ContentDeleter{posts: posts, journeys: journeys}
}

func (d *ContentDeleter) DeletePost(id uuid.UUID) error    { return d.posts.Delete(id) }
func (d *ContentDeleter) DeleteJourney(id uuid.UUID) error { return d.journeys.Delete(id) }

func (d *ContentDeleter) DeleteAllByUser(userID uuid.UUID) error {
	if err := d.posts.DeleteByAuthor(userID); err != nil {
		return err
	}
	return d.journeys.DeleteByOwner(userID)
}

// ModerationHandler exposes the review queue and enforcement workflow to
// admins. All routes sit behind the admin middleware; entries are never
// mutated by the user who generated them.
type ModerationHandler struct {
	modStore  ModerationStore
	userStore UserStore
	content   ContentStore
}

func NewModerationHandler(modStore ModerationStore, userStore UserStore, content ContentStore) *ModerationHandler {
	return &ModerationHandler{modStore: modStore, userStore: userStore, content: content}
}

// ListQueue returns queue entries, newest first. Supports ?status=, ?limit=,
// ?offset=.
func (h *ModerationHandler) ListQueue(c *gin.Context) {
	status := models.ModerationStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		ErrorResponse(c, http.StatusBadRequest, "Invalid status filter")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.modStore.List(status, limit, offset)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to list moderation queue")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ReviewEntry resolves a single entry as reviewed or dismissed.
func (h *ModerationHandler) ReviewEntry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid entry id")
		return
	}

	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.ReviewStatus() {
		ErrorResponse(c, http.StatusBadRequest, "Status must be reviewed or dismissed")
		return
	}

	adminID := mustUserID(c)
	if err := h.modStore.Review(id, req.Status, adminID); err != nil {
		ErrorResponse(c, http.StatusNotFound, "Moderation entry not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry " + string(req.Status)})
}

// BulkReview resolves a batch of entries. Only entries still pending are
// touched; anything already resolved by another reviewer is left alone.
func (h *ModerationHandler) BulkReview(c *gin.Context) {
	var req models.BulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.ReviewStatus() {
		ErrorResponse(c, http.StatusBadRequest, "Status must be reviewed or dismissed")
		return
	}
	if len(req.IDs) == 0 {
		ErrorResponse(c, http.StatusBadRequest, "No entry ids given")
		return
	}

	adminID := mustUserID(c)
	updated, err := h.modStore.BulkReview(req.IDs, req.Status, adminID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to bulk review entries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// EnforceAction runs a destructive enforcement action for a queue entry.
// The side effect executes first; only on success does the entry move to
// action_taken. A status-update failure after a successful side effect is
// reported separately so the caller can tell which half failed.
func (h *ModerationHandler) EnforceAction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid entry id")
		return
	}

	var req models.EnforcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Action.Valid() {
		ErrorResponse(c, http.StatusBadRequest, "Unknown enforcement action")
		return
	}
	if !req.Confirm {
		ErrorResponse(c, http.StatusBadRequest, "Enforcement actions require explicit confirmation")
		return
	}

	entry, err := h.modStore.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Moderation entry not found")
		return
	}

	adminID := mustUserID(c)

	switch req.Action {
	case models.ActionBanUser:
		if entry.UserID == adminID {
			ErrorResponse(c, http.StatusBadRequest, "You cannot ban your own account")
			return
		}
		target, err := h.userStore.GetByID(entry.UserID)
		if err != nil {
			ErrorResponse(c, http.StatusNotFound, "Target user not found")
			return
		}
		if target.IsAdmin {
			ErrorResponse(c, http.StatusBadRequest, "You cannot ban another admin")
			return
		}
		if err := h.userStore.SetBanned(entry.UserID, true); err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to ban user")
			return
		}

	case models.ActionDeleteContent:
		if entry.RelatedEntityID == nil {
			ErrorResponse(c, http.StatusBadRequest, "Entry has no related content to delete")
			return
		}
		if err := h.deleteFlaggedContent(entry); err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to delete content")
			return
		}

	case models.ActionRedactBio:
		if err := h.userStore.RedactBio(entry.UserID); err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to redact bio")
			return
		}

	case models.ActionReplaceUsername:
		if req.Username == "" {
			ErrorResponse(c, http.StatusBadRequest, "Replacement username required")
			return
		}
		if err := h.userStore.ReplaceUsername(entry.UserID, req.Username); err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to replace username")
			return
		}

	case models.ActionDeleteAllContent:
		if entry.UserID == adminID {
			ErrorResponse(c, http.StatusBadRequest, "You cannot delete your own content via moderation")
			return
		}
		if err := h.content.DeleteAllByUser(entry.UserID); err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to delete user content")
			return
		}
	}

	// Side effect done; the entry transition is a separate failure domain.
	if err := h.modStore.MarkActionTaken(entry.ID, adminID); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Action completed but moderation status update failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "action taken", "action": req.Action})
}

func (h *ModerationHandler) deleteFlaggedContent(entry *models.ModerationLogEntry) error {
	switch entry.ContentType {
	case models.ContentTypePostTitle, models.ContentTypePostContent, models.ContentTypePostImage:
		return h.content.DeletePost(*entry.RelatedEntityID)
	case models.ContentTypeJourneyTitle, models.ContentTypeJourneyDescription:
		return h.content.DeleteJourney(*entry.RelatedEntityID)
	case models.ContentTypeProfileBio:
		return h.userStore.RedactBio(entry.UserID)
	default:
		return errUnsupportedDelete
	}
}

// SetUserRole promotes or demotes a user. Demoting the last active admin is
// rejected so the platform can never lock itself out.
func (h *ModerationHandler) SetUserRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req models.SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Confirm {
		ErrorResponse(c, http.StatusBadRequest, "Role changes require explicit confirmation")
		return
	}

	target, err := h.userStore.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "User not found")
		return
	}

	if !req.IsAdmin && target.IsAdmin {
		count, err := h.userStore.CountActiveAdmins()
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to check admin count")
			return
		}
		if count <= 1 {
			ErrorResponse(c, http.StatusBadRequest, "Cannot demote the last active admin")
			return
		}
	}

	if err := h.userStore.SetAdmin(id, req.IsAdmin); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to update role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

// DeleteUser removes an account. Requires ?confirm=true; self-deletion and
// deleting the last active admin are rejected.
func (h *ModerationHandler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	if c.Query("confirm") != "true" {
		ErrorResponse(c, http.StatusBadRequest, "Deletion requires explicit confirmation")
		return
	}

	adminID := mustUserID(c)
	if id == adminID {
		ErrorResponse(c, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	target, err := h.userStore.GetByID(id)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "User not found")
		return
	}
	if target.IsAdmin {
		count, err := h.userStore.CountActiveAdmins()
		if err != nil {
			ErrorResponse(c, http.StatusInternalServerError, "Failed to check admin count")
			return
		}
		if count <= 1 {
			ErrorResponse(c, http.StatusBadRequest, "Cannot delete the last active admin")
			return
		}
	}

	if err := h.userStore.Delete(id); err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func mustUserID(c *gin.Context) uuid.UUID {
	userID, _ := c.Get("user_id")
	uid, _ := userID.(uuid.UUID)
	return uid
}
