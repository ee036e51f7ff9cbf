package models

import (
	"time"

	"github.com/erp/crm/internal/domain/shared"
)

// AggregateModel provides the timestamp and version columns of aggregate roots.
// Timestamps come from the domain clock, so GORM auto-tracking is disabled.
type AggregateModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
	Version   int       `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToDomainAggregateRoot builds a domain BaseAggregateRoot for the given id
func (m *AggregateModel) ToDomainAggregateRoot(id int64) shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		ID:        id,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Version:   m.Version,
	}
}
