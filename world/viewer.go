package world

// Viewer is notified of chunk lifecycle changes as the streaming manager
// loads and evicts chunks around the viewpoint. Renderers and physics
// colliders implement it to build and tear down their per-chunk resources.
// Callbacks run on the tick goroutine and must not block.
type Viewer interface {
	// ViewChunkLoaded is called once per load, after the chunk's heightmap,
	// weights and decorations are all materialised.
	ViewChunkLoaded(c *Chunk)
	// ViewChunkUnloaded is called when a chunk's unload grace period expires
	// and it is evicted.
	ViewChunkUnloaded(pos ChunkPos)
	// ViewChunkLOD is called when a loaded chunk's level-of-detail tier
	// changes.
	ViewChunkLOD(c *Chunk, lod LOD)
}

// NopViewer implements Viewer and does nothing. Embed it to avoid
// implementing callbacks a viewer has no interest in.
type NopViewer struct{}

// ViewChunkLoaded ...
func (NopViewer) ViewChunkLoaded(*Chunk) {}

// ViewChunkUnloaded ...
func (NopViewer) ViewChunkUnloaded(ChunkPos) {}

// ViewChunkLOD ...
func (NopViewer) ViewChunkLOD(*Chunk, LOD) {}
