package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/domain/shared"
	"github.com/erp/crm/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOpportunityRepository implements OpportunityRepository using GORM
type GormOpportunityRepository struct {
	db *gorm.DB
}

// NewGormOpportunityRepository creates a new GormOpportunityRepository
func NewGormOpportunityRepository(db *gorm.DB) *GormOpportunityRepository {
	return &GormOpportunityRepository{db: db}
}

// FindByID finds an opportunity by ID
func (r *GormOpportunityRepository) FindByID(ctx context.Context, id int64) (*sales.Opportunity, error) {
	var model models.OpportunityModel
	if err := r.db.WithContext(ctx).Where("opportunity_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Opportunity %d not found", id))
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new opportunity
func (r *GormOpportunityRepository) Create(ctx context.Context, opportunity *sales.Opportunity) error {
	model := models.OpportunityModelFromDomain(opportunity)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists.Wrap(err)
		}
		return err
	}
	return nil
}

// Update writes every mutable column when the stored version matches
func (r *GormOpportunityRepository) Update(ctx context.Context, opportunity *sales.Opportunity, expectedVersion int) error {
	model := models.OpportunityModelFromDomain(opportunity)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("version = ?", expectedVersion).
		Select("*").
		Omit("opportunity_id", "customer_id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	exists, err := r.exists(ctx, opportunity.ID)
	if err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound.WithMessage(fmt.Sprintf("Opportunity %d not found", opportunity.ID))
	}
	return shared.ErrConcurrencyConflict.WithMessage(
		fmt.Sprintf("Opportunity %d was modified by another process", opportunity.ID))
}

// Delete deletes an opportunity by ID
func (r *GormOpportunityRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("opportunity_id = ?", id).Delete(&models.OpportunityModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.WithMessage(fmt.Sprintf("Opportunity %d not found", id))
	}
	return nil
}

// ListIDsByCustomer returns the customer's opportunity ids in ascending order
func (r *GormOpportunityRepository) ListIDsByCustomer(ctx context.Context, customerID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.WithContext(ctx).
		Model(&models.OpportunityModel{}).
		Where("customer_id = ?", customerID).
		Order("opportunity_id ASC").
		Pluck("opportunity_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormOpportunityRepository) exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OpportunityModel{}).
		Where("opportunity_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// Ensure GormOpportunityRepository implements OpportunityRepository
var _ sales.OpportunityRepository = (*GormOpportunityRepository)(nil)
