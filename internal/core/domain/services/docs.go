// Package services provides the domain services of the dispatch engine.
//
// The package includes:
//   - AvailabilityFilter: drops roster members that already have an active assignment
//   - MatchSelector: picks the nearest rider within the service radius, first one wins on ties
//
// Neither service writes anything. Committing a match is the job of the application layer
// and the assignment store.
package services
