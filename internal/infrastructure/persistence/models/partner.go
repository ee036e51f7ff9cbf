package models

import (
	"github.com/erp/crm/internal/domain/partner"
)

// ContactModel is the embedded contact sub-record of a customer
type ContactModel struct {
	ContactID int64  `gorm:"column:id;not null;uniqueIndex:idx_customers_contact_id"`
	FirstName string `gorm:"type:varchar(100)"`
	LastName  string `gorm:"type:varchar(100)"`
	Email     string `gorm:"type:varchar(200)"`
	Phone     string `gorm:"type:varchar(50)"`
}

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	CustomerID int64        `gorm:"column:customer_id;primaryKey;autoIncrement:false"`
	Name       string       `gorm:"type:varchar(200);not null"`
	Industry   string       `gorm:"type:varchar(100)"`
	Contact    ContactModel `gorm:"embedded;embeddedPrefix:contact_"`
	AggregateModel
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(m.CustomerID),
		Name:              m.Name,
		Industry:          m.Industry,
		Contact: partner.Contact{
			ContactID: m.Contact.ContactID,
			FirstName: m.Contact.FirstName,
			LastName:  m.Contact.LastName,
			Email:     m.Contact.Email,
			Phone:     m.Contact.Phone,
		},
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerID = c.ID
	m.Name = c.Name
	m.Industry = c.Industry
	m.Contact = ContactModel{
		ContactID: c.Contact.ContactID,
		FirstName: c.Contact.FirstName,
		LastName:  c.Contact.LastName,
		Email:     c.Contact.Email,
		Phone:     c.Contact.Phone,
	}
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
