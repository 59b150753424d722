package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/internal/pipeline/service"
	"leadvox_backend/internal/pipeline/transport"
	"leadvox_backend/platform/httpkit"
	"leadvox_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid company id"

	defaultListLimit = 50
	auditLimit       = 100
)

// Handler handles HTTP requests for the outreach pipeline.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new pipeline handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) companyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) actor(c *gin.Context) *string {
	identity := httpkit.GetIdentity(c)
	if identity == nil || identity.Email() == "" {
		return nil
	}
	email := identity.Email()
	return &email
}

// Stats returns the count of companies per pipeline state.
// GET /api/v1/pipeline/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

// ListCompanies pages through companies in one pipeline state.
// GET /api/v1/companies?state=pending_review
func (h *Handler) ListCompanies(c *gin.Context) {
	var req transport.ListCompaniesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultListLimit
	}

	items, err := h.svc.ListByState(c.Request.Context(), domain.State(req.State), req.Limit, req.Offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToCompanyListResponse(items))
}

// GetCompany returns one company with its draft and audit trail.
// GET /api/v1/companies/:id
func (h *Handler) GetCompany(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	company, err := h.svc.GetCompany(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := gin.H{"company": transport.ToCompanyResponse(company)}
	if draft, err := h.svc.GetDraft(c.Request.Context(), id); err == nil {
		resp["draft"] = transport.ToDraftResponse(draft)
	}
	if audit, err := h.svc.AuditTrail(c.Request.Context(), id, auditLimit); err == nil {
		resp["audit"] = transport.ToAuditListResponse(audit)
	}
	httpkit.OK(c, resp)
}

// UpdateCompany patches the descriptive fields of one company.
// PATCH /api/v1/companies/:id
func (h *Handler) UpdateCompany(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}
	var req transport.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	company, err := h.svc.UpdateCompany(c.Request.Context(), repository.UpdateCompanyParams{
		CompanyID:     id,
		Name:          req.Name,
		Website:       req.Website,
		Industry:      req.Industry,
		Location:      req.Location,
		EmployeeCount: req.EmployeeCount,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToCompanyResponse(company))
}

// DeleteCompany removes one company and everything attached to it.
// DELETE /api/v1/companies/:id
func (h *Handler) DeleteCompany(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}
	removeDedup := c.Query("removeDedup") == "true"

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id, removeDedup)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Process imports the posted candidates and runs generation for each.
// POST /api/v1/pipeline/process
func (h *Handler) Process(c *gin.Context) {
	var req transport.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result := h.svc.ProcessAll(c.Request.Context(), req.ToCandidates())
	httpkit.OK(c, result)
}

// FindContact re-runs contact resolution for one company.
// POST /api/v1/companies/:id/find-contact
func (h *Handler) FindContact(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	company, err := h.svc.FindContact(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToCompanyResponse(company))
}

// Generate runs draft generation for a company in pending_generation.
// POST /api/v1/companies/:id/generate
func (h *Handler) Generate(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Generate(c.Request.Context(), id, h.actor(c))) {
		return
	}
	httpkit.OK(c, gin.H{"generated": true})
}

// Review stores the operator's edits on a pending_review draft.
// PUT /api/v1/emails/:id/review
func (h *Handler) Review(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}
	var req transport.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	draft, err := h.svc.Review(c.Request.Context(), id, service.ReviewInput{
		EditedSubject:  req.EditedSubject,
		EditedBody:     req.EditedBody,
		RecipientEmail: req.RecipientEmail,
	}, h.actor(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToDraftResponse(draft))
}

// Approve freezes the draft content and advances to approved_to_send.
// POST /api/v1/emails/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	draft, err := h.svc.Approve(c.Request.Context(), id, h.actor(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToDraftResponse(draft))
}

// Send dispatches the approved draft to the stored contact.
// POST /api/v1/emails/:id/send
func (h *Handler) Send(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	draft, err := h.svc.Send(c.Request.Context(), id, h.actor(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToDraftResponse(draft))
}

// Retry regenerates a draft for a company parked in email_not_generated.
// POST /api/v1/emails/:id/retry
func (h *Handler) Retry(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Retry(c.Request.Context(), id, h.actor(c))) {
		return
	}
	httpkit.OK(c, gin.H{"retried": true})
}

// DeleteDraft removes the draft and resets the company to pending_generation.
// DELETE /api/v1/emails/:id
func (h *Handler) DeleteDraft(c *gin.Context) {
	id, ok := h.companyID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteDraftAndReset(c.Request.Context(), id, h.actor(c))) {
		return
	}
	c.Status(http.StatusNoContent)
}

// BatchRetry regenerates drafts for the listed companies.
// POST /api/v1/emails/batch-retry
func (h *Handler) BatchRetry(c *gin.Context) {
	h.runBatch(c, h.svc.BatchRetry)
}

// BatchApprove approves the listed companies.
// POST /api/v1/emails/batch-approve
func (h *Handler) BatchApprove(c *gin.Context) {
	h.runBatch(c, h.svc.BatchApprove)
}

// BatchSend dispatches the listed companies.
// POST /api/v1/emails/batch-send
func (h *Handler) BatchSend(c *gin.Context) {
	h.runBatch(c, h.svc.BatchSend)
}

// BatchDelete removes the listed companies.
// POST /api/v1/companies/batch-delete
func (h *Handler) BatchDelete(c *gin.Context) {
	var req transport.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.BatchDelete(c.Request.Context(), req.IDs, req.RemoveDedup)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) runBatch(c *gin.Context, op func(ctx context.Context, ids []uuid.UUID, actor *string) (service.BatchResult, error)) {
	var req transport.BatchIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := op(c.Request.Context(), req.IDs, h.actor(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
