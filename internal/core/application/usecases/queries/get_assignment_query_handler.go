package queries

import (
	"context"
	"database/sql"
	"time"

	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetAssignmentQueryHandler reads a delivery straight from the assignments table.
type GetAssignmentQueryHandler struct {
	db *gorm.DB
}

func NewGetAssignmentQueryHandler(db *gorm.DB) GetAssignmentQueryHandler {
	return GetAssignmentQueryHandler{db: db}
}

// Handle returns errs.ErrObjectNotFound when no delivery has the id.
func (h GetAssignmentQueryHandler) Handle(
	ctx context.Context,
	query GetAssignmentQuery,
) (GetAssignmentQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetAssignmentQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			company_id,
			status,
			description,
			pickup_latitude,
			pickup_longitude,
			dropoff_latitude,
			dropoff_longitude,
			rider_number,
			rider_latitude,
			rider_longitude,
			rider_source,
			distance_km,
			estimated_duration,
			created_at,
			assigned_at,
			updated_at
		FROM assignments
		WHERE id = ?
	`, query.AssignmentID().String()).Rows()
	if err != nil {
		return GetAssignmentQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetAssignmentQueryResponse{}, err
		}
		return GetAssignmentQueryResponse{}, errs.NewObjectNotFoundError("deliveryId", query.AssignmentID().String())
	}

	var (
		resp                   GetAssignmentQueryResponse
		dropoffLat, dropoffLon sql.NullFloat64
		createdAt, assignedAt  time.Time
		updatedAt              time.Time
	)
	err = rows.Scan(
		&resp.ID,
		&resp.CompanyID,
		&resp.Status,
		&resp.Description,
		&resp.Pickup.Latitude,
		&resp.Pickup.Longitude,
		&dropoffLat,
		&dropoffLon,
		&resp.RiderNumber,
		&resp.RiderLocation.Latitude,
		&resp.RiderLocation.Longitude,
		&resp.RiderSource,
		&resp.DistanceKm,
		&resp.EstimatedDuration,
		&createdAt,
		&assignedAt,
		&updatedAt,
	)
	if err != nil {
		return GetAssignmentQueryResponse{}, err
	}

	if dropoffLat.Valid && dropoffLon.Valid {
		resp.Dropoff = &Point{Latitude: dropoffLat.Float64, Longitude: dropoffLon.Float64}
	}
	resp.CreatedAt = createdAt.UTC()
	resp.AssignedAt = assignedAt.UTC()
	resp.UpdatedAt = updatedAt.UTC()

	return resp, nil
}
