package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dimitrije/portfolio-api/internal/security"
	"github.com/dimitrije/portfolio-api/internal/services"
	"github.com/dimitrije/portfolio-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	msgMessageDeleted  = "Message deleted successfully"
	msgMessageDelFail  = "Failed to delete message"
	msgMessageLoadFail = "Failed to load messages"
	msgMessageSendFail = "Failed to send message. Please try again."
)

type MessageHandler struct {
	messages  MessageServiceInterface
	sanitizer security.Sanitizer
}

func NewMessageHandler(messages MessageServiceInterface, sanitizer security.Sanitizer) *MessageHandler {
	return &MessageHandler{messages: messages, sanitizer: sanitizer}
}

// Submit stores a contact form message. Anyone may call it.
func (h *MessageHandler) Submit(c *drift.Context) {
	var req dto.ContactRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	name := h.sanitizer.PlainText(req.Name)
	email := strings.TrimSpace(req.Email)
	message := h.sanitizer.PlainText(req.Message)

	switch {
	case name == "":
		respondError(c, http.StatusBadRequest, "Name is required")
		return
	case !validEmail(email):
		respondError(c, http.StatusBadRequest, msgInvalidEmail)
		return
	case message == "":
		respondError(c, http.StatusBadRequest, "Message is required")
		return
	}

	created, err := h.messages.Create(c.Request.Context(), name, email, message)
	if err != nil {
		slog.Error("store contact message", "error", err)
		respondError(c, http.StatusInternalServerError, msgMessageSendFail)
		return
	}
	respond(c, http.StatusCreated, created)
}

func (h *MessageHandler) List(c *drift.Context) {
	messages, err := h.messages.List(c.Request.Context())
	if err != nil {
		slog.Error("list contact messages", "error", err)
		notifier(c).Error(msgMessageLoadFail)
		respondError(c, http.StatusInternalServerError, msgMessageLoadFail)
		return
	}
	respond(c, http.StatusOK, messages)
}

func (h *MessageHandler) Delete(c *drift.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid message id")
		return
	}

	err := h.messages.Delete(c.Request.Context(), id)
	if errors.Is(err, services.ErrMessageNotFound) {
		respondError(c, http.StatusNotFound, "message not found")
		return
	}
	if err != nil {
		slog.Error("delete contact message", "message_id", id, "error", err)
		notifier(c).Error(msgMessageDelFail)
		respondError(c, http.StatusInternalServerError, msgMessageDelFail)
		return
	}

	notifier(c).Success(msgMessageDeleted)
	respond(c, http.StatusOK, nil)
}
