package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Hirdyansh9/Orderbook/internal/logging"
	"github.com/Hirdyansh9/Orderbook/internal/models"
	"github.com/Hirdyansh9/Orderbook/internal/notification"
)

// PolicyRepository is the policy storage the handlers need.
type PolicyRepository interface {
	GetPolicy(ctx context.Context, ownerID string) (models.Policy, error)
	SavePolicy(ctx context.Context, p models.Policy) (models.Policy, error)
}

// InboxRepository is the per-user notification storage the handlers need.
type InboxRepository interface {
	ListNotifications(ctx context.Context, userID string, f models.NotificationFilter) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) (models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	DeleteNotification(ctx context.Context, userID string, id uuid.UUID) error
}

// Engine runs scans and manual sends.
type Engine interface {
	RunNow(ctx context.Context) (notification.ScanReport, error)
	CreateManual(ctx context.Context, n notification.ManualNotification) ([]models.Notification, error)
}

type Handler struct {
	policies PolicyRepository
	inbox    InboxRepository
	engine   Engine
	logger   *logging.Logger
}

func NewHandler(policies PolicyRepository, inbox InboxRepository, engine Engine, logger *logging.Logger) *Handler {
	return &Handler{policies: policies, inbox: inbox, engine: engine, logger: logger}
}

// GetPolicy returns the caller's policy, creating the default one on first access.
func (h *Handler) GetPolicy(c *gin.Context) {
	ownerID := callerID(c)
	policy, err := h.policies.GetPolicy(c.Request.Context(), ownerID)
	if errors.Is(err, models.ErrNotFound) {
		policy, err = h.policies.SavePolicy(c.Request.Context(), models.Policy{
			OwnerID:  ownerID,
			Triggers: models.DefaultTriggers(),
		})
		if err == nil {
			h.logger.Infof("Created default policy for owner %s", ownerID)
		}
	}
	if err != nil {
		h.logger.Errorf("Failed to get policy for owner %s: %v", ownerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get policy"})
		return
	}
	c.JSON(http.StatusOK, policy)
}

func (h *Handler) UpdatePolicy(c *gin.Context) {
	var req models.PolicyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid request body for policy: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID := callerID(c)
	policy, err := h.policies.SavePolicy(c.Request.Context(), models.Policy{
		OwnerID:  ownerID,
		Triggers: req.Normalized(),
	})
	if err != nil {
		h.logger.Errorf("Failed to update policy for owner %s: %v", ownerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update policy"})
		return
	}

	h.logger.Infof("Updated policy for owner %s (%d triggers)", ownerID, len(policy.Triggers))
	c.JSON(http.StatusOK, policy)
}

func (h *Handler) ListNotifications(c *gin.Context) {
	var filter models.NotificationFilter
	if v := c.Query("read"); v != "" {
		read, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid read filter"})
			return
		}
		filter.Read = &read
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		filter.Limit = limit
	}

	userID := callerID(c)
	notifications, err := h.inbox.ListNotifications(c.Request.Context(), userID, filter)
	if err != nil {
		h.logger.Errorf("Failed to get notifications for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	userID := callerID(c)
	count, err := h.inbox.CountUnread(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorf("Failed to count unread notifications for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}
	n, err := h.inbox.MarkRead(c.Request.Context(), callerID(c), id)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to mark notification %s read: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := callerID(c)
	updated, err := h.inbox.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorf("Failed to mark notifications read for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": updated})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	id, ok := h.notificationID(c)
	if !ok {
		return
	}
	err := h.inbox.DeleteNotification(c.Request.Context(), callerID(c), id)
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to delete notification %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

func (h *Handler) CreateManual(c *gin.Context) {
	var req notification.ManualNotification
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid request body for manual notification: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := h.engine.CreateManual(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, notification.ErrInvalidManual) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorf("Failed to create manual notification: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       fmt.Sprintf("Notification sent to %d user(s)", len(created)),
		"count":         len(created),
		"notifications": created,
	})
}

func (h *Handler) TestTriggers(c *gin.Context) {
	report, err := h.engine.RunNow(c.Request.Context())
	if errors.Is(err, notification.ErrScanInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "A notification scan is already running"})
		return
	}
	if err != nil {
		h.logger.Errorf("Manual notification scan failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate triggers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Triggers evaluated", "report": report})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) notificationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return uuid.Nil, false
	}
	return id, true
}
