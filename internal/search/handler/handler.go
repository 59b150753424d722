package handler

import (
	"net/http"

	"leadvox_backend/internal/search/service"
	"leadvox_backend/internal/search/transport"
	"leadvox_backend/platform/httpkit"
	"leadvox_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for provider lead search.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new search handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Search runs a provider company search with dedup exclusions.
// POST /api/v1/search/companies
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Search(c.Request.Context(), service.Filters{
		Locations:      req.Locations,
		EmployeesMin:   req.EmployeesMin,
		EmployeesMax:   req.EmployeesMax,
		Keywords:       req.Keywords,
		Page:           req.Page,
		PerPage:        req.PerPage,
		IncludeFetched: req.IncludeFetched,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	items := transport.ToOrganizationResponses(result.Organizations)
	httpkit.OK(c, transport.SearchResponse{
		Items:      items,
		Total:      len(items),
		Page:       result.Page,
		TotalPages: result.TotalPages,
	})
}

// FetchedIDs lists organization ids already imported.
// GET /api/v1/search/fetched
func (h *Handler) FetchedIDs(c *gin.Context) {
	ids, err := h.svc.FetchedIDs(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FetchedIDsResponse{OrganizationIDs: ids})
}
