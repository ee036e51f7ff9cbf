package handler

import (
	"context"

	partnerapp "github.com/erp/crm/internal/application/partner"
	"github.com/erp/crm/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CustomerAdmin is the application service behind CustomerHandler
type CustomerAdmin interface {
	Add(ctx context.Context, req partnerapp.AddCustomerRequest) (*partnerapp.CustomerResponse, error)
	GetByID(ctx context.Context, customerID int64) (*partnerapp.CustomerResponse, error)
	Delete(ctx context.Context, customerID int64) error
	ListCustomerIDs(ctx context.Context) (*partnerapp.CustomerIDsResponse, error)
}

// CustomerHandler handles customer administration endpoints
type CustomerHandler struct {
	BaseHandler
	customers CustomerAdmin
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers CustomerAdmin) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.AddCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	customer, err := h.customers.Add(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetByID handles GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "customer ID")
		return
	}

	customer, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete handles DELETE /customers/:id. The customer's opportunities are
// left in place.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.InvalidID(c, "customer ID")
		return
	}

	if err := h.customers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListIDs handles GET /customers/ids
func (h *CustomerHandler) ListIDs(c *gin.Context) {
	ids, err := h.customers.ListCustomerIDs(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ids)
}
