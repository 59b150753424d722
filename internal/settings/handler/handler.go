package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadvox_backend/internal/prompts"
	"leadvox_backend/internal/settings/repository"
	"leadvox_backend/internal/settings/service"
	"leadvox_backend/internal/settings/transport"
	"leadvox_backend/platform/httpkit"
	"leadvox_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid title id"
)

// Handler handles HTTP requests for operator settings.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new settings handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListTitles returns every configured target title.
// GET /api/v1/settings/titles
func (h *Handler) ListTitles(c *gin.Context) {
	titles, err := h.svc.ListTitles(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTitleListResponse(titles))
}

// CreateTitle adds a target title.
// POST /api/v1/settings/titles
func (h *Handler) CreateTitle(c *gin.Context) {
	var req transport.CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	title, err := h.svc.CreateTitle(c.Request.Context(), req.Title, req.Priority)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.ToTitleResponse(title))
}

// UpdateTitle patches a target title.
// PUT /api/v1/settings/titles/:id
func (h *Handler) UpdateTitle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	var req transport.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	title, err := h.svc.UpdateTitle(c.Request.Context(), repository.UpdateTitleParams{
		ID:       id,
		Title:    req.Title,
		Priority: req.Priority,
		Active:   req.Active,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTitleResponse(title))
}

// DeleteTitle removes a target title.
// DELETE /api/v1/settings/titles/:id
func (h *Handler) DeleteTitle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteTitle(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPrompt returns the effective outreach prompt template.
// GET /api/v1/settings/prompt
func (h *Handler) GetPrompt(c *gin.Context) {
	template, custom, err := h.svc.GetPrompt(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	if !custom {
		template = prompts.DefaultTemplate
	}
	httpkit.OK(c, transport.PromptResponse{Template: template, Custom: custom})
}

// SavePrompt stores the outreach prompt override; empty clears it.
// PUT /api/v1/settings/prompt
func (h *Handler) SavePrompt(c *gin.Context) {
	var req transport.SavePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if httpkit.HandleError(c, h.svc.SavePrompt(c.Request.Context(), req.Template)) {
		return
	}
	httpkit.OK(c, gin.H{"saved": true})
}

// GetSender returns the sender override used for outgoing drafts.
// GET /api/v1/settings/sender
func (h *Handler) GetSender(c *gin.Context) {
	sender, err := h.svc.GetSender(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.SenderResponse{
		Name:   sender.Name,
		Email:  sender.Email,
		Custom: sender.Email != "",
	})
}

// SaveSender stores the sender override; an empty email clears it.
// PUT /api/v1/settings/sender
func (h *Handler) SaveSender(c *gin.Context) {
	var req transport.SaveSenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if httpkit.HandleError(c, h.svc.SaveSender(c.Request.Context(), req.Name, req.Email)) {
		return
	}
	httpkit.OK(c, gin.H{"saved": true})
}
