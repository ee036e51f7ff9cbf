package sales

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Stage is the pipeline stage of an opportunity
type Stage string

const (
	StageCreate        Stage = "Create"
	StageDevelop       Stage = "Develop"
	StagePropose       Stage = "Propose"
	StageCloseWon      Stage = "Close-Won"
	StageCloseLost     Stage = "Close-Lost"
	StageNotApplicable Stage = "NA"
)

// IsValid reports whether the stage belongs to the pipeline vocabulary
func (s Stage) IsValid() bool {
	switch s {
	case StageCreate, StageDevelop, StagePropose, StageCloseWon, StageCloseLost, StageNotApplicable:
		return true
	}
	return false
}

// IsClosed reports whether the opportunity has left the open pipeline
func (s Stage) IsClosed() bool {
	return s == StageCloseWon || s == StageCloseLost
}

const maxOpportunityNameLength = 200

// Owner is the sales representative responsible for an opportunity
type Owner struct {
	OwnerID      int64
	FirstName    string
	LastName     string
	BusinessUnit string
	Title        string
}

// FullName returns "first last", skipping empty parts
func (o Owner) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// Quote is a price quote attached to an opportunity
type Quote struct {
	QuoteID  int64           `json:"quote_id"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status"`
	IssuedAt time.Time       `json:"issued_at"`
}

// Opportunity is a potential sale tracked for one customer.
// OpportunityID and CustomerID never change once the record exists.
type Opportunity struct {
	shared.BaseAggregateRoot
	CustomerID  int64
	Name        string
	Stage       Stage
	StartDate   *time.Time
	CloseDate   *time.Time
	DateCreated time.Time
	EstRevenue  decimal.Decimal
	Owner       Owner
	Quotes      []Quote
}

// OpportunityDetails holds the mutable fields of an opportunity
type OpportunityDetails struct {
	Name        string
	Stage       Stage
	StartDate   *time.Time
	CloseDate   *time.Time
	DateCreated time.Time
	EstRevenue  decimal.Decimal
	Owner       Owner
	Quotes      []Quote
}

// NewOpportunity creates an opportunity with an already allocated id
func NewOpportunity(id, customerID int64, details OpportunityDetails, now time.Time) (*Opportunity, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Opportunity ID must be positive")
	}
	if customerID <= 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Customer ID must be positive")
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	o := &Opportunity{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(id, now),
		CustomerID:        customerID,
	}
	o.assign(details)
	if o.DateCreated.IsZero() {
		o.DateCreated = now
	}
	return o, nil
}

// OpportunityID returns the allocated identifier
func (o *Opportunity) OpportunityID() int64 {
	return o.ID
}

// Apply replaces the mutable fields and bumps the version
func (o *Opportunity) Apply(details OpportunityDetails, now time.Time) error {
	if err := details.Validate(); err != nil {
		return err
	}
	dateCreated := o.DateCreated
	o.assign(details)
	if o.DateCreated.IsZero() {
		o.DateCreated = dateCreated
	}
	o.Touch(now)
	return nil
}

// Details returns the mutable fields of the opportunity
func (o *Opportunity) Details() OpportunityDetails {
	return OpportunityDetails{
		Name:        o.Name,
		Stage:       o.Stage,
		StartDate:   o.StartDate,
		CloseDate:   o.CloseDate,
		DateCreated: o.DateCreated,
		EstRevenue:  o.EstRevenue,
		Owner:       o.Owner,
		Quotes:      o.Quotes,
	}
}

func (o *Opportunity) assign(d OpportunityDetails) {
	o.Name = strings.TrimSpace(d.Name)
	o.Stage = d.Stage
	o.StartDate = d.StartDate
	o.CloseDate = d.CloseDate
	o.DateCreated = d.DateCreated
	o.EstRevenue = d.EstRevenue
	o.Owner = d.Owner
	o.Quotes = make([]Quote, len(d.Quotes))
	copy(o.Quotes, d.Quotes)
}

// Validate checks the mutable fields
func (d OpportunityDetails) Validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.ErrInvalidInput.WithMessage("Opportunity name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxOpportunityNameLength {
		return shared.ErrInvalidInput.WithMessage(
			fmt.Sprintf("Opportunity name cannot exceed %d characters", maxOpportunityNameLength))
	}
	if !d.Stage.IsValid() {
		return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Unknown opportunity stage %q", d.Stage))
	}
	if d.EstRevenue.IsNegative() {
		return shared.ErrInvalidInput.WithMessage("Estimated revenue cannot be negative")
	}
	for i, q := range d.Quotes {
		if q.Amount.IsNegative() {
			return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Quote %d has a negative amount", i))
		}
	}
	return nil
}
