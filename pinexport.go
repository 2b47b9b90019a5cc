// Package pinexport collects pin links and engagement stats from a board feed
// that keeps loading more cards as it scrolls, and exports them as CSV.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, fs/).
package pinexport
