// Package kernel holds the value objects shared by every aggregate of the dispatch domain.
//
// The package includes:
//   - Location: a validated latitude/longitude pair tagged as measured or simulated
//   - Haversine: the great-circle distance used for every rider-to-pickup comparison
//   - UUID: identifiers for assignments
//
// All values are immutable and safe for concurrent use. Zero values are invalid and
// are rejected by their Validate methods.
package kernel
