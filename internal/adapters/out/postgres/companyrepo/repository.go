package companyrepo

import (
	"context"
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/company"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCompanyRepository implements ports.CompanyRepository using GORM.
type GormCompanyRepository struct {
	db *gorm.DB
}

func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Add saves a company together with its roster.
func (r *GormCompanyRepository) Add(ctx context.Context, aggregate *company.Company) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get loads a company and its roster in registration order.
func (r *GormCompanyRepository) Get(ctx context.Context, id string) (*company.Company, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errs.NewValueIsRequiredError("companyId")
	}

	var dto CompanyDTO
	err := r.db.WithContext(ctx).
		Preload("Riders", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		First(&dto, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("companyId", id)
	}
	if err != nil {
		return nil, err
	}

	return toDomain(dto)
}
