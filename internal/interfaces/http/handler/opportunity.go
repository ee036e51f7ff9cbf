package handler

import (
	"context"

	salesapp "github.com/erp/crm/internal/application/sales"
	"github.com/erp/crm/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// OpportunityStore is the application service behind OpportunityHandler
type OpportunityStore interface {
	Create(ctx context.Context, req salesapp.CreateOpportunityRequest) (*salesapp.OpportunityResponse, error)
	View(ctx context.Context, id int64) (*salesapp.OpportunityResponse, error)
	Update(ctx context.Context, id int64, req salesapp.UpdateOpportunityRequest) (*salesapp.OpportunityResponse, error)
	Delete(ctx context.Context, id int64) error
	Recent(ctx context.Context, customerID int64) (*salesapp.RecentOpportunitiesResponse, error)
	ListOpportunityIDs(ctx context.Context, customerID int64) ([]int64, error)
	ResetRecentCache(ctx context.Context) error
}

// OpportunityHandler handles opportunity API endpoints
type OpportunityHandler struct {
	BaseHandler
	store OpportunityStore
}

// NewOpportunityHandler creates a new OpportunityHandler
func NewOpportunityHandler(store OpportunityStore) *OpportunityHandler {
	return &OpportunityHandler{store: store}
}

// OpportunityIDsResponse lists every stored opportunity id of a customer
type OpportunityIDsResponse struct {
	CustomerID     int64   `json:"customer_id"`
	OpportunityIDs []int64 `json:"opportunity_ids"`
}

// Create handles POST /customers/:id/opportunities.
// The customer in the path wins over any customer_id in the body.
func (h *OpportunityHandler) Create(c *gin.Context) {
	customerID, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "customer ID")
		return
	}

	var req salesapp.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	req.CustomerID = customerID

	opportunity, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, opportunity)
}

// GetByID handles GET /opportunities/:id
func (h *OpportunityHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "opportunity ID")
		return
	}

	opportunity, err := h.store.View(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opportunity)
}

// Update handles PUT /opportunities/:id
func (h *OpportunityHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "opportunity ID")
		return
	}

	var req salesapp.UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	opportunity, err := h.store.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opportunity)
}

// Delete handles DELETE /opportunities/:id
func (h *OpportunityHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "opportunity ID")
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Recent handles GET /customers/:id/opportunities/recent
func (h *OpportunityHandler) Recent(c *gin.Context) {
	customerID, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "customer ID")
		return
	}

	recent, err := h.store.Recent(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, recent)
}

// ListIDs handles GET /customers/:id/opportunities/ids
func (h *OpportunityHandler) ListIDs(c *gin.Context) {
	customerID, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "customer ID")
		return
	}

	ids, err := h.store.ListOpportunityIDs(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, OpportunityIDsResponse{CustomerID: customerID, OpportunityIDs: ids})
}

// ResetCache handles POST /admin/cache/reset. It must not run concurrently
// with opportunity writes.
func (h *OpportunityHandler) ResetCache(c *gin.Context) {
	if err := h.store.ResetRecentCache(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
