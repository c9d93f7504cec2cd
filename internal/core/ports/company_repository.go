// Package ports defines the contracts between the dispatch core and its adapters.
// The core depends only on these interfaces; storage, geolocation and caching
// adapters implement them.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/company"
)

// CompanyRepository is the roster store.
type CompanyRepository interface {
	// Add persists a new company with its roster.
	Add(ctx context.Context, aggregate *company.Company) error

	// Get returns the company with its roster in stored order.
	// Returns an errs.ObjectNotFoundError when the company does not exist.
	Get(ctx context.Context, id string) (*company.Company, error)
}
