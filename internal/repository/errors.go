// Package repository implements the persistence gateway over MySQL.
// Sentinel errors defined here let handlers translate storage
// failures into the API error taxonomy without inspecting driver
// errors themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when registration collides with an
// existing row after case-folding the email.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a referenced row is absent. It is also
// returned when a caller lacks ownership of an existing row, so that
// handlers cannot disclose whether the row exists.
var ErrNotFound = errors.New("not found")

// ErrListingInactive is returned when an interaction targets a
// soft-deleted listing.
var ErrListingInactive = errors.New("listing inactive")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
