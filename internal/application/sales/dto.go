package sales

import (
	"time"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Opportunity DTOs
// =============================================================================

// OwnerDTO is the sales representative attached to an opportunity
type OwnerDTO struct {
	OwnerID      int64  `json:"owner_id"`
	FirstName    string `json:"first_name" binding:"max=100"`
	LastName     string `json:"last_name" binding:"max=100"`
	BusinessUnit string `json:"business_unit" binding:"max=100"`
	Title        string `json:"title" binding:"max=100"`
}

// QuoteDTO is a price quote attached to an opportunity
type QuoteDTO struct {
	QuoteID  int64           `json:"quote_id"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status" binding:"max=50"`
	IssuedAt time.Time       `json:"issued_at"`
}

// CreateOpportunityRequest represents a request to create a new opportunity
type CreateOpportunityRequest struct {
	CustomerID  int64           `json:"customer_id"`
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Stage       string          `json:"stage" binding:"required,oneof=Create Develop Propose Close-Won Close-Lost NA"`
	StartDate   *time.Time      `json:"start_date"`
	CloseDate   *time.Time      `json:"close_date"`
	DateCreated *time.Time      `json:"date_created"`
	EstRevenue  decimal.Decimal `json:"est_revenue"`
	Owner       OwnerDTO        `json:"owner"`
	Quotes      []QuoteDTO      `json:"quotes" binding:"omitempty,dive"`
}

// UpdateOpportunityRequest replaces the mutable fields of an opportunity.
// CustomerID, when present, must equal the stored owner. ExpectedVersion,
// when present, must equal the stored version.
type UpdateOpportunityRequest struct {
	CustomerID      *int64          `json:"customer_id"`
	ExpectedVersion *int            `json:"expected_version" binding:"omitempty,min=1"`
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Stage           string          `json:"stage" binding:"required,oneof=Create Develop Propose Close-Won Close-Lost NA"`
	StartDate       *time.Time      `json:"start_date"`
	CloseDate       *time.Time      `json:"close_date"`
	DateCreated     *time.Time      `json:"date_created"`
	EstRevenue      decimal.Decimal `json:"est_revenue"`
	Owner           OwnerDTO        `json:"owner"`
	Quotes          []QuoteDTO      `json:"quotes" binding:"omitempty,dive"`
}

// OpportunityResponse represents an opportunity in API responses
type OpportunityResponse struct {
	OpportunityID int64           `json:"opportunity_id"`
	CustomerID    int64           `json:"customer_id"`
	Name          string          `json:"name"`
	Stage         string          `json:"stage"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	CloseDate     *time.Time      `json:"close_date,omitempty"`
	DateCreated   time.Time       `json:"date_created"`
	EstRevenue    decimal.Decimal `json:"est_revenue"`
	Owner         OwnerDTO        `json:"owner"`
	Quotes        []QuoteDTO      `json:"quotes"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RecentOpportunitiesResponse lists a customer's most recently used opportunity ids
type RecentOpportunitiesResponse struct {
	CustomerID     int64   `json:"customer_id"`
	OpportunityIDs []int64 `json:"opportunity_ids"`
}

func (r CreateOpportunityRequest) details() sales.OpportunityDetails {
	return toDetails(r.Name, r.Stage, r.StartDate, r.CloseDate, r.DateCreated, r.EstRevenue, r.Owner, r.Quotes)
}

func (r UpdateOpportunityRequest) details() sales.OpportunityDetails {
	return toDetails(r.Name, r.Stage, r.StartDate, r.CloseDate, r.DateCreated, r.EstRevenue, r.Owner, r.Quotes)
}

func toDetails(
	name, stage string,
	start, closeDate, created *time.Time,
	revenue decimal.Decimal,
	owner OwnerDTO,
	quotes []QuoteDTO,
) sales.OpportunityDetails {
	d := sales.OpportunityDetails{
		Name:       name,
		Stage:      sales.Stage(stage),
		StartDate:  start,
		CloseDate:  closeDate,
		EstRevenue: revenue,
		Owner: sales.Owner{
			OwnerID:      owner.OwnerID,
			FirstName:    owner.FirstName,
			LastName:     owner.LastName,
			BusinessUnit: owner.BusinessUnit,
			Title:        owner.Title,
		},
		Quotes: make([]sales.Quote, 0, len(quotes)),
	}
	if created != nil {
		d.DateCreated = *created
	}
	for _, q := range quotes {
		d.Quotes = append(d.Quotes, sales.Quote{
			QuoteID:  q.QuoteID,
			Amount:   q.Amount,
			Status:   q.Status,
			IssuedAt: q.IssuedAt,
		})
	}
	return d
}

// ToOpportunityResponse converts a domain Opportunity to OpportunityResponse
func ToOpportunityResponse(o *sales.Opportunity) OpportunityResponse {
	quotes := make([]QuoteDTO, 0, len(o.Quotes))
	for _, q := range o.Quotes {
		quotes = append(quotes, QuoteDTO{
			QuoteID:  q.QuoteID,
			Amount:   q.Amount,
			Status:   q.Status,
			IssuedAt: q.IssuedAt,
		})
	}
	return OpportunityResponse{
		OpportunityID: o.OpportunityID(),
		CustomerID:    o.CustomerID,
		Name:          o.Name,
		Stage:         string(o.Stage),
		StartDate:     o.StartDate,
		CloseDate:     o.CloseDate,
		DateCreated:   o.DateCreated,
		EstRevenue:    o.EstRevenue,
		Owner: OwnerDTO{
			OwnerID:      o.Owner.OwnerID,
			FirstName:    o.Owner.FirstName,
			LastName:     o.Owner.LastName,
			BusinessUnit: o.Owner.BusinessUnit,
			Title:        o.Owner.Title,
		},
		Quotes:    quotes,
		Version:   o.GetVersion(),
		CreatedAt: o.GetCreatedAt(),
		UpdatedAt: o.GetUpdatedAt(),
	}
}
