package world

import "github.com/google/uuid"

// ColumnData is the persisted payload of a chunk column. Only the carved
// heightmap is stored: biome weights and decorations are cheaper to recompute
// than to read back, and are fully determined by the seed anyway.
type ColumnData struct {
	// Heights is the row-major heightmap grid, (chunkSize+1)² values.
	Heights []float64
}

// Provider caches generated chunk columns between sessions. Implementations
// are an optimisation only: a miss simply regenerates the column, so a
// provider may drop or expire entries freely.
type Provider interface {
	// LoadColumn returns the cached column at pos, or ok=false when the
	// provider holds no entry for it.
	LoadColumn(pos ChunkPos) (data *ColumnData, ok bool, err error)
	// StoreColumn caches the column at pos, replacing any previous entry.
	StoreColumn(pos ChunkPos, data *ColumnData) error

	Close() error
}

// WorldBinder is implemented by providers that persist across sessions and
// must refuse to serve a cache built for a different world.
type WorldBinder interface {
	// BindWorld associates the provider with a world identity. An error means
	// the store belongs to another world and must not be reused.
	BindWorld(id uuid.UUID) error
}

// NopProvider is a Provider that caches nothing. It is the default: every
// column is generated on demand.
type NopProvider struct{}

// LoadColumn ...
func (NopProvider) LoadColumn(pos ChunkPos) (*ColumnData, bool, error) { return nil, false, nil }

// StoreColumn ...
func (NopProvider) StoreColumn(pos ChunkPos, data *ColumnData) error { return nil }

// Close ...
func (NopProvider) Close() error { return nil }
