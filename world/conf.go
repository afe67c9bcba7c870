package world

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/brentp/intintmap"
	"github.com/farshore-game/farshore/world/decorate"
	"github.com/farshore-game/farshore/world/hydrology"
	"github.com/farshore-game/farshore/world/terrain"
	"github.com/google/uuid"
)

// StreamConfig holds the tunable parameters of the chunk streaming manager.
// The zero value is usable; sensible defaults are applied by withDefaults.
type StreamConfig struct {
	// ChunkSize is the chunk edge length in metres. It is frozen for the
	// lifetime of a world: a provider cache built with one size cannot be read
	// with another.
	ChunkSize int `toml:"chunk_size"`
	// ViewDistance is the Chebyshev radius, in chunks, of the ring kept loaded
	// around the viewpoint: (2*ViewDistance+1)² chunks.
	ViewDistance int `toml:"view_distance"`
	// LoadBudget is the maximum number of chunks materialised per tick.
	LoadBudget int `toml:"load_budget"`
	// UnloadDelay is the grace period a chunk survives outside the view ring
	// before it is evicted.
	UnloadDelay time.Duration `toml:"unload_delay"`

	// HighDetailDistance and MediumDetailDistance are the Chebyshev distances
	// within which loaded chunks hold LOD0 and LOD1 respectively; chunks
	// beyond both hold LOD2.
	HighDetailDistance   int `toml:"high_detail_distance"`
	MediumDetailDistance int `toml:"medium_detail_distance"`

	// TreeAttempts/MaxTrees and RockAttempts/MaxRocks are the per-chunk
	// placement sample budgets and caps.
	TreeAttempts int `toml:"tree_attempts"`
	MaxTrees     int `toml:"max_trees"`
	RockAttempts int `toml:"rock_attempts"`
	MaxRocks     int `toml:"max_rocks"`

	// GeneratorWorkers moves chunk materialisation onto a worker pool of this
	// size. Zero keeps generation synchronous on the tick goroutine, which is
	// the default: ticks then have a hard, reproducible ordering. QueueSize is
	// the job channel capacity of the pool.
	GeneratorWorkers int `toml:"generator_workers"`
	QueueSize        int `toml:"queue_size"`
}

func (c StreamConfig) withDefaults() StreamConfig {
	if c.ChunkSize == 0 {
		c.ChunkSize = 64
	}
	if c.ViewDistance == 0 {
		c.ViewDistance = 4
	}
	if c.LoadBudget == 0 {
		c.LoadBudget = 2
	}
	if c.UnloadDelay == 0 {
		c.UnloadDelay = time.Second * 5
	}
	if c.HighDetailDistance == 0 {
		c.HighDetailDistance = 1
	}
	if c.MediumDetailDistance == 0 {
		c.MediumDetailDistance = 2
	}
	if c.TreeAttempts == 0 {
		c.TreeAttempts = 48
	}
	if c.MaxTrees == 0 {
		c.MaxTrees = 24
	}
	if c.RockAttempts == 0 {
		c.RockAttempts = 28
	}
	if c.MaxRocks == 0 {
		c.MaxRocks = 14
	}
	if c.QueueSize == 0 {
		c.QueueSize = 64
	}
	return c
}

// Config may be used to create a new World. Fields filled out may be left
// empty: they are filled with reasonable defaults by Config.New().
type Config struct {
	// Log is the logger the world and its streaming manager write to. Defaults
	// to slog.Default().
	Log *slog.Logger
	// Seed is the 32-bit world seed. Together with the terrain configuration
	// it fully determines the world's shape.
	Seed int32

	// Terrain is the frozen biome configuration driving all sampling.
	Terrain terrain.Config
	// Hydrology tunes river tracing and lake detection. Its centre and search
	// radius default to the island's when left zero.
	Hydrology hydrology.Config
	// Density tunes the decoration density queries.
	Density decorate.DensityConfig
	// Stream tunes the chunk streaming manager.
	Stream StreamConfig

	// Provider caches generated chunk columns between sessions. Defaults to
	// NopProvider, which regenerates every column.
	Provider Provider
	// Ground overrides the ground resolver decorations settle on. Defaults to
	// the carved terrain surface; a physics raycaster may replace it.
	Ground decorate.GroundResolver
}

// New creates a world with the settings present in the configuration: it
// initialises the terrain sampler, runs hydrology generation and prepares the
// streaming manager. The world starts empty; chunks stream in as Tick is
// called with a viewpoint.
func (conf Config) New() (*World, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	conf.Stream = conf.Stream.withDefaults()

	sampler, err := terrain.NewSampler(conf.Seed, conf.Terrain, conf.Log)
	if err != nil {
		return nil, fmt.Errorf("create world: %w", err)
	}
	if conf.Hydrology.CenterX == 0 && conf.Hydrology.CenterZ == 0 {
		conf.Hydrology.CenterX = sampler.Config().CenterX
		conf.Hydrology.CenterZ = sampler.Config().CenterZ
	}
	if conf.Hydrology.SearchRadius == 0 {
		conf.Hydrology.SearchRadius = sampler.Config().IslandFalloffEnd
	}
	if conf.Provider == nil {
		conf.Provider = NopProvider{}
	}

	w := &World{
		conf:    conf,
		log:     conf.Log,
		id:      worldID(conf.Seed),
		sampler: sampler,
		metrics: &Metrics{},
		closed:  make(chan struct{}),
	}
	w.hydro = hydrology.Generate(sampler, conf.Seed, conf.Hydrology, conf.Log)
	w.densities = decorate.NewDensities(w, conf.Density)
	if w.conf.Ground == nil {
		w.conf.Ground = carvedGround{w: w}
	}

	if b, ok := conf.Provider.(WorldBinder); ok {
		if err := b.BindWorld(w.id); err != nil {
			return nil, fmt.Errorf("create world: bind provider: %w", err)
		}
	}

	w.loader = &loader{
		w:         w,
		conf:      conf.Stream,
		log:       conf.Log,
		loaded:    map[ChunkPos]*Chunk{},
		queued:    map[ChunkPos]struct{}{},
		deadlines: intintmap.New(64, 0.6),
	}
	if conf.Stream.GeneratorWorkers > 0 {
		w.loader.pool = newGenPool(w, conf.Stream.GeneratorWorkers, conf.Stream.QueueSize, conf.Stream.LoadBudget)
		w.loader.inflight = map[ChunkPos]inflightJob{}
	}

	conf.Log.Info("world initialised",
		"id", w.id,
		"seed", conf.Seed,
		"rivers", len(w.hydro.Rivers()),
		"lakes", len(w.hydro.Lakes()),
		"chunk size", conf.Stream.ChunkSize,
		"view distance", conf.Stream.ViewDistance,
	)
	return w, nil
}

// worldID derives the stable world identity from the seed, so a provider
// cache can detect being pointed at the wrong world.
func worldID(seed int32) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("farshore:%d", seed)))
}

// carvedGround is the default ground resolver: decorations settle directly on
// the carved terrain surface.
type carvedGround struct{ w *World }

// GroundHeight ...
func (g carvedGround) GroundHeight(x, z float64) (float64, bool) {
	return g.w.HeightWithRivers(x, z), true
}
