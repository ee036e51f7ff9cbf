package partner

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/erp/crm/internal/domain/shared"
)

const (
	maxCustomerNameLength = 200
	maxIndustryLength     = 100
)

// Contact is the primary contact person of a customer.
// ContactID is allocated from its own sequence when the customer is added.
type Contact struct {
	ContactID int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Customer represents a customer account that owns opportunities
type Customer struct {
	shared.BaseAggregateRoot
	Name     string
	Industry string
	Contact  Contact
}

// CustomerProfile holds the caller supplied fields of a customer
type CustomerProfile struct {
	Name     string
	Industry string
	Contact  Contact
}

// NewCustomer creates a customer with already allocated customer and contact ids
func NewCustomer(customerID, contactID int64, profile CustomerProfile, now time.Time) (*Customer, error) {
	if customerID <= 0 || contactID <= 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Customer and contact IDs must be positive")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	contact := profile.Contact
	contact.ContactID = contactID
	contact.Email = strings.ToLower(strings.TrimSpace(contact.Email))

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(customerID, now),
		Name:              strings.TrimSpace(profile.Name),
		Industry:          strings.TrimSpace(profile.Industry),
		Contact:           contact,
	}, nil
}

// CustomerID returns the allocated identifier
func (c *Customer) CustomerID() int64 {
	return c.ID
}

// Validate checks the profile fields
func (p CustomerProfile) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return shared.ErrInvalidInput.WithMessage("Customer name cannot be empty")
	}
	if len(name) > maxCustomerNameLength {
		return shared.ErrInvalidInput.WithMessage(
			fmt.Sprintf("Customer name cannot exceed %d characters", maxCustomerNameLength))
	}
	if len(p.Industry) > maxIndustryLength {
		return shared.ErrInvalidInput.WithMessage(
			fmt.Sprintf("Industry cannot exceed %d characters", maxIndustryLength))
	}
	if email := strings.TrimSpace(p.Contact.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Invalid contact email %q", email))
		}
	}
	return nil
}
