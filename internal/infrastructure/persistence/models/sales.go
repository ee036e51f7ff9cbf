package models

import (
	"time"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// OwnerModel is the embedded owner sub-record of an opportunity
type OwnerModel struct {
	OwnerID      int64  `gorm:"column:id"`
	FirstName    string `gorm:"type:varchar(100)"`
	LastName     string `gorm:"type:varchar(100)"`
	BusinessUnit string `gorm:"type:varchar(100)"`
	Title        string `gorm:"type:varchar(100)"`
}

// OpportunityModel is the persistence model for the Opportunity domain entity.
type OpportunityModel struct {
	OpportunityID int64           `gorm:"column:opportunity_id;primaryKey;autoIncrement:false"`
	CustomerID    int64           `gorm:"not null;index:idx_opportunities_customer_id"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Stage         sales.Stage     `gorm:"type:varchar(20);not null"`
	StartDate     *time.Time
	CloseDate     *time.Time
	DateCreated   time.Time       `gorm:"not null"`
	EstRevenue    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Owner         OwnerModel      `gorm:"embedded;embeddedPrefix:owner_"`
	Quotes        []sales.Quote   `gorm:"type:jsonb;serializer:json"`
	AggregateModel
}

// TableName returns the table name for GORM
func (OpportunityModel) TableName() string {
	return "opportunities"
}

// ToDomain converts the persistence model to a domain Opportunity entity.
func (m *OpportunityModel) ToDomain() *sales.Opportunity {
	quotes := m.Quotes
	if quotes == nil {
		quotes = []sales.Quote{}
	}
	return &sales.Opportunity{
		BaseAggregateRoot: m.ToDomainAggregateRoot(m.OpportunityID),
		CustomerID:        m.CustomerID,
		Name:              m.Name,
		Stage:             m.Stage,
		StartDate:         m.StartDate,
		CloseDate:         m.CloseDate,
		DateCreated:       m.DateCreated,
		EstRevenue:        m.EstRevenue,
		Owner: sales.Owner{
			OwnerID:      m.Owner.OwnerID,
			FirstName:    m.Owner.FirstName,
			LastName:     m.Owner.LastName,
			BusinessUnit: m.Owner.BusinessUnit,
			Title:        m.Owner.Title,
		},
		Quotes: quotes,
	}
}

// FromDomain populates the persistence model from a domain Opportunity entity.
func (m *OpportunityModel) FromDomain(o *sales.Opportunity) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OpportunityID = o.ID
	m.CustomerID = o.CustomerID
	m.Name = o.Name
	m.Stage = o.Stage
	m.StartDate = o.StartDate
	m.CloseDate = o.CloseDate
	m.DateCreated = o.DateCreated
	m.EstRevenue = o.EstRevenue
	m.Owner = OwnerModel{
		OwnerID:      o.Owner.OwnerID,
		FirstName:    o.Owner.FirstName,
		LastName:     o.Owner.LastName,
		BusinessUnit: o.Owner.BusinessUnit,
		Title:        o.Owner.Title,
	}
	m.Quotes = o.Quotes
	if m.Quotes == nil {
		m.Quotes = []sales.Quote{}
	}
}

// OpportunityModelFromDomain creates a new persistence model from a domain Opportunity entity.
func OpportunityModelFromDomain(o *sales.Opportunity) *OpportunityModel {
	m := &OpportunityModel{}
	m.FromDomain(o)
	return m
}
