package store

import (
	"context"

	"personadesk/internal/persona"
)

// Store is keyed CRUD for persona records. Implementations return
// sentinel.ErrNotFound for missing refs and surface write failures to the
// caller: losing a user's edit silently is unacceptable, so this layer is
// fail-loud in contrast to the identity client.
type Store interface {
	// FindByExternalRef returns the record for one upstream user id.
	FindByExternalRef(ctx context.Context, externalRef string) (*persona.Record, error)

	// FindByExternalRefs batch-fetches records for a page of upstream ids.
	// Missing refs are simply absent from the result map.
	FindByExternalRefs(ctx context.Context, externalRefs []string) (map[string]*persona.Record, error)

	// Upsert atomically inserts or updates the record matching
	// record.ExternalRef and returns the stored state. Two concurrent saves
	// for the same ref must never produce two rows.
	Upsert(ctx context.Context, record *persona.Record) (*persona.Record, error)
}
