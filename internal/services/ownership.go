package services

import "errors"

// ErrNotFound is the ownership failure. A row owned by someone else is
// reported exactly like a missing row.
var ErrNotFound = errors.New("resource not found")

// Owned is implemented by every owner-scoped model.
type Owned interface {
	OwnedBy() uint64
}

// AssertOwns returns ErrNotFound unless resource belongs to userID.
func AssertOwns(userID uint64, resource Owned) error {
	if resource == nil || resource.OwnedBy() != userID {
		return ErrNotFound
	}
	return nil
}
