// Package assignment holds the delivery aggregate created when a rider is matched to a request.
//
// The package includes:
//   - Assignment: the aggregate root recording pickup, dropoff, the chosen rider, the rider's
//     location at dispatch time, distance and estimated duration
//   - Status: the lifecycle state machine pending -> assigned -> in_progress -> completed,
//     with cancelled reachable from any non-terminal state
//
// Key business rules:
//   - An assignment is created directly in Assigned status; creating it and making the first
//     transition is one step
//   - Distance and estimated duration are never negative
//   - Assigned and InProgress assignments are "active" and make their rider unavailable;
//     storage adapters guarantee at most one active assignment per rider
//   - Version is used by storage adapters for optimistic updates of later transitions
package assignment
