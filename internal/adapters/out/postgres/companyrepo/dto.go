// Package companyrepo persists company rosters.
// A roster is stored as one row per rider with its position, so the order in which
// riders were registered survives a round trip.
package companyrepo

import (
	"sort"

	"dispatch/internal/core/domain/model/company"
)

// CompanyDTO is the companies table.
type CompanyDTO struct {
	ID     string            `gorm:"type:varchar(255);primaryKey"`
	Name   string            `gorm:"type:varchar(255);not null;default:''"`
	Riders []CompanyRiderDTO `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
}

func (CompanyDTO) TableName() string {
	return "companies"
}

// CompanyRiderDTO is one roster entry.
type CompanyRiderDTO struct {
	CompanyID   string `gorm:"type:varchar(255);primaryKey"`
	RiderNumber string `gorm:"type:varchar(64);primaryKey"`
	Position    int    `gorm:"not null;index:idx_company_riders_position"`
}

func (CompanyRiderDTO) TableName() string {
	return "company_riders"
}

func fromDomain(c *company.Company) CompanyDTO {
	numbers := c.RiderNumbers()
	riders := make([]CompanyRiderDTO, 0, len(numbers))
	for i, n := range numbers {
		riders = append(riders, CompanyRiderDTO{
			CompanyID:   c.ID(),
			RiderNumber: n,
			Position:    i,
		})
	}

	return CompanyDTO{
		ID:     c.ID(),
		Name:   c.Name(),
		Riders: riders,
	}
}

func toDomain(dto CompanyDTO) (*company.Company, error) {
	riders := append([]CompanyRiderDTO(nil), dto.Riders...)
	sort.SliceStable(riders, func(i, j int) bool { return riders[i].Position < riders[j].Position })

	numbers := make([]string, 0, len(riders))
	for _, r := range riders {
		numbers = append(numbers, r.RiderNumber)
	}

	return company.RestoreCompany(dto.ID, dto.Name, numbers)
}
