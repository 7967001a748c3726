package server

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound is returned when no session exists under the
	// requested id, or its TTL already expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrVersionConflict is returned by Put when the stored version no
	// longer matches the version the caller read. The caller should
	// re-fetch and retry or drop the write.
	ErrVersionConflict = errors.New("session version conflict")
)

// SessionStore persists serialized game sessions under a session id.
//
// Every stored session carries a version counter. Get returns the current
// version alongside the data and Put only succeeds when the given version
// still matches, so concurrent writers cannot silently overwrite each
// other. Put with version 0 creates the session and fails with
// ErrVersionConflict when one already exists.
type SessionStore interface {
	// Get returns the serialized session and its current version. Reading
	// refreshes the session's TTL.
	Get(ctx context.Context, id string) (data []byte, version uint64, err error)

	// Put writes the serialized session if the stored version still equals
	// version, returning the new version. Version 0 means create.
	Put(ctx context.Context, id string, data []byte, version uint64) (uint64, error)

	// Delete removes the session. Deleting a missing session is not an
	// error.
	Delete(ctx context.Context, id string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
