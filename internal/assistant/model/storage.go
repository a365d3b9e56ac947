package model

import "context"

// StorageBackend is the durable key -> JSON-string mapping behind the
// session state store. Two keys are in use per profile: the serialized
// transcript and the serialized history. Absence of a key is equivalent
// to an empty sequence.
type StorageBackend interface {
	// Get returns the stored value for key and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set replaces the stored value for key with the full serialized
	// sequence. There is no incremental or append-only format.
	Set(ctx context.Context, key string, value string) error

	// Delete removes the key entirely.
	Delete(ctx context.Context, key string) error
}
