// Package company models a logistics company and its rider roster.
//
// The roster is an ordered list of rider numbers (phone-number-like identifiers).
// Order matters: when two riders are equally close to a pickup, the one listed
// first wins. Riders carry no persisted state of their own; whether a rider is
// free is derived from the company's active assignments.
package company
