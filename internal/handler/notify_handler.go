package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardshare/internal/dto"
	"github.com/octobees/cardshare/internal/metrics"
	"github.com/octobees/cardshare/internal/notify"
)

// NotifyHandler raises the "new contact" ticket.
type NotifyHandler struct {
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewNotifyHandler constructs a NotifyHandler.
func NewNotifyHandler(notifier notify.Notifier, m *metrics.Metrics, logger *slog.Logger) *NotifyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotifyHandler{notifier: notifier, metrics: m, logger: logger, now: time.Now}
}

// Contact handles POST /notifications/contact.
func (h *NotifyHandler) Contact(c echo.Context) error {
	var req dto.NotificationRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	ticket, err := notify.Send(c.Request().Context(), h.notifier, notify.ContactNotification{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, h.now())
	if err != nil {
		if errors.Is(err, notify.ErrInvalidName) {
			h.metrics.IncrementNotification("invalid")
			return Error(c, http.StatusBadRequest, err.Error())
		}
		h.metrics.IncrementNotification("failed")
		h.logger.ErrorContext(c.Request().Context(), "contact notification failed", "error", err)
		return Error(c, http.StatusBadGateway, "unable to send notification")
	}

	h.metrics.IncrementNotification("sent")
	return Success(c, http.StatusAccepted, "notification sent", ticket)
}
