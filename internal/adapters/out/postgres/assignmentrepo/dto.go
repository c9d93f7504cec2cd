// Package assignmentrepo persists deliveries and enforces the one-active-delivery-per-rider
// rule through a partial unique index on rider_number.
package assignmentrepo

import (
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
)

// ActiveRiderIndex is the partial unique index that makes a rider busy.
const ActiveRiderIndex = "idx_assignments_active_rider"

// AssignmentDTO is the assignments table. The where clause of the partial index must not
// contain commas; gorm splits index settings on them.
type AssignmentDTO struct {
	ID                string           `gorm:"type:varchar(36);primaryKey"`
	CompanyID         string           `gorm:"type:varchar(255);not null;index:idx_assignments_company_status,priority:1"`
	Pickup            LocationDTO      `gorm:"embedded;embeddedPrefix:pickup_"`
	DropoffLatitude   *float64
	DropoffLongitude  *float64
	Description       string           `gorm:"type:text;not null;default:''"`
	RiderNumber       string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_assignments_active_rider,where:status = 'assigned' OR status = 'in_progress'"`
	Rider             RiderLocationDTO `gorm:"embedded;embeddedPrefix:rider_"`
	DistanceKm        float64          `gorm:"not null"`
	EstimatedDuration int              `gorm:"not null"`
	Status            string           `gorm:"type:varchar(16);not null;index:idx_assignments_company_status,priority:2"`
	CreatedAt         time.Time        `gorm:"not null;autoCreateTime:false"`
	AssignedAt        time.Time        `gorm:"not null;index:idx_assignments_assigned_at"`
	UpdatedAt         time.Time        `gorm:"not null;autoUpdateTime:false"`
	Version           int              `gorm:"not null;default:0"`
}

func (AssignmentDTO) TableName() string {
	return "assignments"
}

// LocationDTO is an embedded latitude/longitude pair.
type LocationDTO struct {
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
}

// RiderLocationDTO is where the rider was resolved at dispatch time and how.
type RiderLocationDTO struct {
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
	Source    string  `gorm:"type:varchar(16);not null"`
}

func fromDomain(a *assignment.Assignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:        a.ID().String(),
		CompanyID: a.CompanyID(),
		Pickup: LocationDTO{
			Latitude:  a.Pickup().Latitude(),
			Longitude: a.Pickup().Longitude(),
		},
		Description: a.Description(),
		RiderNumber: a.RiderNumber(),
		Rider: RiderLocationDTO{
			Latitude:  a.RiderLocation().Latitude(),
			Longitude: a.RiderLocation().Longitude(),
			Source:    string(a.RiderLocation().Provenance()),
		},
		DistanceKm:        a.DistanceKm(),
		EstimatedDuration: a.EstimatedDuration(),
		Status:            a.Status().String(),
		CreatedAt:         a.CreatedAt(),
		AssignedAt:        a.AssignedAt(),
		UpdatedAt:         a.UpdatedAt(),
		Version:           a.Version(),
	}

	if d, ok := a.Dropoff(); ok {
		lat, lon := d.Latitude(), d.Longitude()
		dto.DropoffLatitude = &lat
		dto.DropoffLongitude = &lon
	}

	return dto
}

func toDomain(dto AssignmentDTO) (*assignment.Assignment, error) {
	id, err := kernel.UUIDFromString(dto.ID)
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewLocation(dto.Pickup.Latitude, dto.Pickup.Longitude)
	if err != nil {
		return nil, err
	}

	var dropoff *kernel.Location
	if dto.DropoffLatitude != nil && dto.DropoffLongitude != nil {
		d, dropErr := kernel.NewLocation(*dto.DropoffLatitude, *dto.DropoffLongitude)
		if dropErr != nil {
			return nil, dropErr
		}
		dropoff = &d
	}

	riderLocation, err := restoreLocation(dto.Rider)
	if err != nil {
		return nil, err
	}

	status, err := assignment.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return assignment.RestoreAssignment(assignment.RestoreParams{
		NewAssignmentParams: assignment.NewAssignmentParams{
			ID:                id,
			CompanyID:         dto.CompanyID,
			Pickup:            pickup,
			Dropoff:           dropoff,
			Description:       dto.Description,
			RiderNumber:       dto.RiderNumber,
			RiderLocation:     riderLocation,
			DistanceKm:        dto.DistanceKm,
			EstimatedDuration: dto.EstimatedDuration,
		},
		Status:     status,
		CreatedAt:  dto.CreatedAt,
		AssignedAt: dto.AssignedAt,
		UpdatedAt:  dto.UpdatedAt,
		Version:    dto.Version,
	})
}

func restoreLocation(dto RiderLocationDTO) (kernel.Location, error) {
	if kernel.Provenance(dto.Source) == kernel.Simulated {
		return kernel.NewSimulatedLocation(dto.Latitude, dto.Longitude)
	}
	return kernel.NewLocation(dto.Latitude, dto.Longitude)
}
