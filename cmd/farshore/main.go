package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/farshore-game/farshore/world"
	"github.com/farshore-game/farshore/world/chunkdb"
	"github.com/farshore-game/farshore/world/decorate"
	"github.com/farshore-game/farshore/world/hydrology"
	"github.com/farshore-game/farshore/world/terrain"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml"
)

// userConfig is the on-disk TOML configuration of the walker.
type userConfig struct {
	// Seed is the 32-bit world seed.
	Seed int32 `toml:"seed"`
	// CacheDir enables the LevelDB column cache when set.
	CacheDir string `toml:"cache_dir"`

	Terrain   terrain.Config         `toml:"terrain"`
	Hydrology hydrology.Config       `toml:"hydrology"`
	Density   decorate.DensityConfig `toml:"density"`
	Stream    world.StreamConfig     `toml:"stream"`
}

// main generates a world and walks a viewpoint through it, streaming chunks
// in and out and logging the manager's counters. It doubles as a smoke test
// for seeds and configurations.
func main() {
	log := slog.Default()
	confPath := flag.String("config", "farshore.toml", "path to the configuration, created with defaults when missing")
	seed := flag.Int("seed", 0, "world seed override")
	ticks := flag.Int("ticks", 600, "number of 50ms ticks to walk the viewpoint for")
	flag.Parse()

	conf, err := readConfig(log, *confPath)
	if err != nil {
		log.Error("read config: " + err.Error())
		os.Exit(1)
	}
	if *seed != 0 {
		conf.Seed = int32(*seed)
	}

	wc := world.Config{
		Log:       log,
		Seed:      conf.Seed,
		Terrain:   conf.Terrain,
		Hydrology: conf.Hydrology,
		Density:   conf.Density,
		Stream:    conf.Stream,
	}
	if conf.CacheDir != "" {
		db, err := chunkdb.Open(conf.CacheDir)
		if err != nil {
			log.Error("open column cache: " + err.Error())
			os.Exit(1)
		}
		wc.Provider = db
	}
	w, err := wc.New()
	if err != nil {
		log.Error("create world: " + err.Error())
		os.Exit(1)
	}
	defer w.Close()

	// Walk the viewpoint in a slow circle around the island centre, the way a
	// player skirting the foothills would.
	radius := conf.Terrain.IslandFalloffStart
	if radius == 0 {
		radius = terrain.DefaultConfig().IslandFalloffStart
	}
	radius /= 4

	start := time.Now()
	for i := 0; i < *ticks; i++ {
		a := float64(i) * 0.002
		view := mgl64.Vec3{math.Cos(a) * radius, 0, math.Sin(a) * radius}
		w.Tick(view, 50*time.Millisecond)
		if (i+1)%100 == 0 {
			m := w.Metrics()
			log.Info("streaming",
				"tick", i+1,
				"loaded", w.LoadedCount(),
				"queued", m.QueueLen,
				"loads", m.Loads,
				"evictions", m.Evictions,
				"cache hits", m.CacheHits,
			)
		}
	}
	m := w.Metrics()
	log.Info("walk finished",
		"ticks", *ticks,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"loaded", w.LoadedCount(),
		"rivers", len(w.Rivers()),
		"lakes", len(w.Lakes()),
		"loads", m.Loads,
		"evictions", m.Evictions,
		"stale drops", m.StaleDrops,
	)
}

// readConfig reads the configuration from the TOML file at path, creating the
// file with defaults if it does not yet exist.
func readConfig(log *slog.Logger, path string) (userConfig, error) {
	c := userConfig{
		Seed:      12345,
		Terrain:   terrain.DefaultConfig(),
		Hydrology: hydrology.DefaultConfig(),
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return c, fmt.Errorf("create default config: %w", err)
		}
		log.Info("created default config", "path", path)
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}
