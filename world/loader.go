package world

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/brentp/intintmap"
	"github.com/go-gl/mathgl/mgl64"
)

// loader is the chunk streaming manager. It owns the chunk table exclusively:
// chunks enter it only through the load queue and leave it only through
// expired unload timers, so a chunk coordinate is never materialised twice
// concurrently. All methods run under the world lock on the tick goroutine.
type loader struct {
	w    *World
	conf StreamConfig
	log  *slog.Logger

	view    ChunkPos
	hasView bool
	// dirty forces a reconcile on the next tick even without a viewpoint
	// chunk-boundary crossing, after runtime view distance changes.
	dirty bool

	loaded map[ChunkPos]*Chunk
	// queue holds coordinates awaiting materialisation, nearest shell first.
	// queued mirrors it as a set so re-requests are idempotent.
	queue  []ChunkPos
	queued map[ChunkPos]struct{}
	// deadlines maps packed positions of chunks pending unload to their
	// eviction time on the elapsed clock, in nanoseconds. Only loaded chunks
	// ever hold a deadline.
	deadlines *intintmap.Map
	elapsed   time.Duration

	// pool and inflight are nil unless asynchronous generation is configured.
	pool     *genPool
	inflight map[ChunkPos]inflightJob
}

// tick advances the manager: fold in finished async jobs, reconcile the view
// ring if the viewpoint crossed a chunk boundary, materialise up to the load
// budget, expire unload timers and reassign LOD tiers.
func (l *loader) tick(view mgl64.Vec3, dt time.Duration) {
	l.elapsed += dt
	if l.pool != nil {
		l.integrate()
	}
	if vp := posFromWorld(view, l.conf.ChunkSize); !l.hasView || vp != l.view || l.dirty {
		l.view, l.hasView, l.dirty = vp, true, false
		l.reconcile()
	}
	l.process()
	l.expire()
	l.assignLODs()
	l.w.metrics.setQueueLen(len(l.queue))
}

// reconcile re-evaluates every chunk against the new view ring: chunks that
// left it get an unload timer, chunks that fell back in have theirs
// cancelled, and missing ring coordinates are queued nearest shell first.
// Queued coordinates that left the ring are not removed here; they are
// dropped lazily when dequeued.
func (l *loader) reconcile() {
	dist := int32(l.conf.ViewDistance)
	for pos, c := range l.loaded {
		if chebyshev(pos, l.view) > dist {
			if c.state != StatePendingUnload {
				c.state = StatePendingUnload
				l.deadlines.Put(pos.pack(), int64(l.elapsed+l.conf.UnloadDelay))
				l.log.Debug("chunk pending unload", "pos", pos)
			}
		} else if c.state == StatePendingUnload {
			c.state = StateLoaded
			l.deadlines.Del(pos.pack())
			l.log.Debug("chunk unload cancelled", "pos", pos)
		}
	}
	if l.pool != nil {
		for pos, job := range l.inflight {
			if chebyshev(pos, l.view) > dist {
				job.cancel()
			}
		}
	}
	for r := int32(0); r <= dist; r++ {
		l.enqueueShell(r)
	}
}

// enqueueShell queues the missing chunks of the square shell at Chebyshev
// distance r from the viewpoint, in a fixed scan order.
func (l *loader) enqueueShell(r int32) {
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			if chebyshev(ChunkPos{dx, dz}, ChunkPos{}) != r {
				continue
			}
			l.enqueue(ChunkPos{l.view[0] + dx, l.view[1] + dz})
		}
	}
}

// enqueue adds a coordinate to the load queue unless it is already loaded,
// queued or being generated. Requesting a chunk is idempotent.
func (l *loader) enqueue(pos ChunkPos) {
	if _, ok := l.loaded[pos]; ok {
		return
	}
	if _, ok := l.queued[pos]; ok {
		return
	}
	if _, ok := l.inflight[pos]; ok {
		return
	}
	l.queue = append(l.queue, pos)
	l.queued[pos] = struct{}{}
}

func (l *loader) pop() ChunkPos {
	pos := l.queue[0]
	l.queue = l.queue[1:]
	delete(l.queued, pos)
	return pos
}

// process materialises queued chunks. Entries whose coordinate drifted out of
// the view ring since they were queued are skipped without consuming budget.
func (l *loader) process() {
	if l.pool != nil {
		l.dispatch()
		return
	}
	budget := l.conf.LoadBudget
	for budget > 0 && len(l.queue) > 0 {
		pos := l.pop()
		if chebyshev(pos, l.view) > int32(l.conf.ViewDistance) {
			l.w.metrics.addStaleDrop()
			l.log.Debug("stale queue entry dropped", "pos", pos)
			continue
		}
		l.finish(l.w.buildChunk(context.Background(), pos))
		budget--
	}
}

// dispatch keeps up to the load budget of generation jobs in flight on the
// worker pool.
func (l *loader) dispatch() {
	for len(l.inflight) < l.conf.LoadBudget && len(l.queue) > 0 {
		pos := l.pop()
		if chebyshev(pos, l.view) > int32(l.conf.ViewDistance) {
			l.w.metrics.addStaleDrop()
			l.log.Debug("stale queue entry dropped", "pos", pos)
			continue
		}
		ctx, cancel := context.WithCancel(context.Background())
		select {
		case l.pool.jobs <- genJob{ctx: ctx, pos: pos}:
			l.inflight[pos] = inflightJob{cancel: cancel}
		default:
			// Pool back-pressure: put the coordinate back and retry next tick.
			cancel()
			l.queue = append([]ChunkPos{pos}, l.queue...)
			l.queued[pos] = struct{}{}
			return
		}
	}
}

// integrate folds finished asynchronous jobs back into the chunk table.
// Results for coordinates that left the view ring while generating are
// discarded; reconcile re-queues them if the viewpoint returns.
func (l *loader) integrate() {
	for {
		select {
		case res := <-l.pool.results:
			if job, ok := l.inflight[res.pos]; ok {
				job.cancel()
				delete(l.inflight, res.pos)
			}
			switch {
			case res.c == nil:
				l.w.metrics.addCancelled()
			case chebyshev(res.pos, l.view) > int32(l.conf.ViewDistance):
				l.w.metrics.addStaleDrop()
			default:
				l.finish(res.c)
			}
		default:
			return
		}
	}
}

// finish installs a materialised chunk into the table and notifies viewers.
func (l *loader) finish(c *Chunk) {
	c.state = StateLoaded
	c.lod = l.lodFor(c.pos)
	l.loaded[c.pos] = c
	l.w.metrics.addLoad()
	l.log.Debug("chunk loaded", "pos", c.pos, "lod", c.lod, "decorations", len(c.decorations))
	for _, v := range l.w.viewers {
		v.ViewChunkLoaded(c)
	}
}

// expire evicts chunks whose unload grace period has run out.
func (l *loader) expire() {
	var expired []int64
	for kv := range l.deadlines.Items() {
		if time.Duration(kv[1]) <= l.elapsed {
			expired = append(expired, kv[0])
		}
	}
	// The deadline table iterates in hash order; sort so eviction callbacks
	// fire in a reproducible order.
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	for _, key := range expired {
		pos := unpackPos(key)
		l.deadlines.Del(key)
		c, ok := l.loaded[pos]
		if !ok {
			continue
		}
		delete(l.loaded, pos)
		c.state = StateUnloaded
		l.w.metrics.addEviction()
		l.log.Debug("chunk evicted", "pos", pos)
		for _, v := range l.w.viewers {
			v.ViewChunkUnloaded(pos)
		}
	}
}

func (l *loader) lodFor(pos ChunkPos) LOD {
	switch d := chebyshev(pos, l.view); {
	case d <= int32(l.conf.HighDetailDistance):
		return LOD0
	case d <= int32(l.conf.MediumDetailDistance):
		return LOD1
	}
	return LOD2
}

// assignLODs recomputes the LOD tier of every loaded chunk and notifies
// viewers of changes.
func (l *loader) assignLODs() {
	for pos, c := range l.loaded {
		if lod := l.lodFor(pos); lod != c.lod {
			c.lod = lod
			for _, v := range l.w.viewers {
				v.ViewChunkLOD(c, lod)
			}
		}
	}
}

// sortedLoaded returns the resident chunks in coordinate order, for
// deterministic catch-up callbacks.
func (l *loader) sortedLoaded() []*Chunk {
	out := make([]*Chunk, 0, len(l.loaded))
	for _, c := range l.loaded {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].pos, out[j].pos
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})
	return out
}

func (l *loader) cancelInflight() {
	for _, job := range l.inflight {
		job.cancel()
	}
}

// buildChunk materialises the chunk at pos in two strict phases: the
// heightmap and biome weights first, from the provider cache when possible,
// then decoration placement over the finished surface. Cancelling ctx aborts
// between rows and returns nil.
func (w *World) buildChunk(ctx context.Context, pos ChunkPos) *Chunk {
	size := w.conf.Stream.ChunkSize
	c := newChunk(pos, size)
	ox, oz := c.origin()
	n := size + 1

	cached := false
	if data, ok, err := w.conf.Provider.LoadColumn(pos); err != nil {
		w.log.Warn("provider read failed, regenerating", "pos", pos, "error", err)
	} else if ok {
		if len(data.Heights) == n*n {
			copy(c.heights, data.Heights)
			cached = true
			w.metrics.addCacheHit()
		} else {
			w.log.Warn("provider entry has wrong grid size, regenerating",
				"pos", pos, "got", len(data.Heights), "want", n*n)
		}
	}
	if !cached {
		for iz := 0; iz < n; iz++ {
			if ctx.Err() != nil {
				return nil
			}
			for ix := 0; ix < n; ix++ {
				c.heights[iz*n+ix] = w.HeightWithRivers(ox+float64(ix), oz+float64(iz))
			}
		}
		if err := w.conf.Provider.StoreColumn(pos, &ColumnData{Heights: c.heights}); err != nil {
			w.log.Warn("provider write failed", "pos", pos, "error", err)
		}
	}
	for iz := 0; iz < n; iz++ {
		if ctx.Err() != nil {
			return nil
		}
		for ix := 0; ix < n; ix++ {
			c.weights[iz*n+ix] = w.BiomeWeights(ox+float64(ix), oz+float64(iz))
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	w.populateChunk(c)
	return c
}
