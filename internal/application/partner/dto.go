package partner

import (
	"time"

	"github.com/erp/crm/internal/domain/partner"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// ContactDTO is the primary contact of a customer
type ContactDTO struct {
	ContactID int64  `json:"contact_id"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Email     string `json:"email" binding:"omitempty,email,max=200"`
	Phone     string `json:"phone" binding:"max=50"`
}

// AddCustomerRequest represents a request to add a customer.
// Customer and contact ids are allocated by the service.
type AddCustomerRequest struct {
	Name     string     `json:"name" binding:"required,min=1,max=200"`
	Industry string     `json:"industry" binding:"max=100"`
	Contact  ContactDTO `json:"contact"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	CustomerID int64      `json:"customer_id"`
	Name       string     `json:"name"`
	Industry   string     `json:"industry"`
	Contact    ContactDTO `json:"contact"`
	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CustomerIDsResponse lists customer ids, highest first
type CustomerIDsResponse struct {
	CustomerIDs []int64 `json:"customer_ids"`
}

func (r AddCustomerRequest) profile() partner.CustomerProfile {
	return partner.CustomerProfile{
		Name:     r.Name,
		Industry: r.Industry,
		Contact: partner.Contact{
			FirstName: r.Contact.FirstName,
			LastName:  r.Contact.LastName,
			Email:     r.Contact.Email,
			Phone:     r.Contact.Phone,
		},
	}
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID: c.CustomerID(),
		Name:       c.Name,
		Industry:   c.Industry,
		Contact: ContactDTO{
			ContactID: c.Contact.ContactID,
			FirstName: c.Contact.FirstName,
			LastName:  c.Contact.LastName,
			Email:     c.Contact.Email,
			Phone:     c.Contact.Phone,
		},
		Version:   c.GetVersion(),
		CreatedAt: c.GetCreatedAt(),
		UpdatedAt: c.GetUpdatedAt(),
	}
}
