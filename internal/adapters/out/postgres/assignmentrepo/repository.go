package assignmentrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/adapters/out/postgres/dberr"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormAssignmentRepository implements ports.AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db *gorm.DB
}

func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// CreateIfCourierFree inserts the assignment. The partial unique index on rider_number
// rejects the row when the rider already has an active delivery, which is reported as
// ports.ErrCourierIsBusy. The check and the insert are one statement, so concurrent
// inserts for the same rider cannot both succeed.
func (r *GormAssignmentRepository) CreateIfCourierFree(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if !aggregate.IsActive() {
		return errs.NewValueIsInvalidErrorWithCause("status",
			errors.New("only active assignments can be created"))
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).Create(&dto).Error
	if dberr.IsUniqueViolation(err) {
		return ports.ErrCourierIsBusy
	}

	return err
}

// QueryActive returns the company's assigned and in-progress deliveries.
func (r *GormAssignmentRepository) QueryActive(ctx context.Context, companyID string) ([]*assignment.Assignment, error) {
	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status IN ?", companyID, activeStatusStrings()).
		Order("assigned_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// Get retrieves a delivery by ID.
func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).First(&dto, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("deliveryId", id.String())
	}
	if err != nil {
		return nil, err
	}

	return toDomain(dto)
}

// Update writes the status and updatedAt of a loaded delivery and bumps its version.
// Zero affected rows means the row was changed after it was loaded.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&AssignmentDTO{}).
		Where("id = ? AND version = ?", aggregate.ID().String(), aggregate.Version()).
		Updates(map[string]any{
			"status":     aggregate.Status().String(),
			"updated_at": aggregate.UpdatedAt(),
			"version":    gorm.Expr("version + 1"),
		})
	if dberr.IsUniqueViolation(result.Error) {
		return ports.ErrCourierIsBusy
	}
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&AssignmentDTO{}).Where("id = ?", aggregate.ID().String()).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("deliveryId", aggregate.ID().String())
		}
		return errs.NewVersionIsInvalidErrorWithCause("version")
	}

	return nil
}

// ListAssignedBefore returns deliveries still waiting for pickup since before the given time.
func (r *GormAssignmentRepository) ListAssignedBefore(
	ctx context.Context,
	before time.Time,
	limit int,
) ([]*assignment.Assignment, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND assigned_at < ?", assignment.Assigned.String(), before.UTC()).
		Order("assigned_at")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var dtos []AssignmentDTO
	if err := q.Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

func toDomainAll(dtos []AssignmentDTO) ([]*assignment.Assignment, error) {
	out := make([]*assignment.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func activeStatusStrings() []string {
	active := assignment.ActiveStatuses()
	out := make([]string, 0, len(active))
	for _, s := range active {
		out = append(out, s.String())
	}
	return out
}
