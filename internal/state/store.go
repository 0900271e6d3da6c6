package state

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Store loads and saves onboarding records.
//
// Load returns a fresh record at version 0 for an unknown user. Save writes
// only if the stored version still equals r.Version, then bumps it; a writer
// holding an outdated record gets ErrStaleRecord and nothing is written.
type Store interface {
	Load(ctx context.Context, userID string) (*Record, error)
	Save(ctx context.Context, r *Record) error
	Close() error
}

var (
	ErrStaleRecord   = errors.New("record was modified by another writer")
	ErrInvalidUserID = errors.New("invalid user id")
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]{0,127}$`)

// ValidUserID rejects ids that cannot be used as a file name or key.
func ValidUserID(userID string) error {
	if !userIDPattern.MatchString(userID) {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, userID)
	}
	return nil
}

// StaleError wraps ErrStaleRecord with the versions involved.
func StaleError(userID string, have, stored int64) error {
	return fmt.Errorf("%w: user %s at version %d, stored %d", ErrStaleRecord, userID, have, stored)
}
