// Package repository provides data access for the maintenance dispatch system.
//
// Postgres-backed stores use pgx directly; MemoryStore implements the same
// operations in process for local runs and tests.
package repository

import (
	"errors"
	"time"

	"github.com/shiva/propdispatch/internal/model"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotPending is returned when an assignment's status check fails
	// because the request already left the pending state.
	ErrNotPending = errors.New("request is not pending")
)

// DefaultAssignTimeout is the maximum duration for an assignment transaction,
// including lock wait time.
const DefaultAssignTimeout = 5 * time.Second

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// location builds a Location from nullable coordinates.
func location(lat, lon *float64) *model.Location {
	if lat == nil || lon == nil {
		return nil
	}
	return &model.Location{Lat: *lat, Lon: *lon}
}
