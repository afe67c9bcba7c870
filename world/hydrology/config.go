package hydrology

// Config holds the tunable parameters for hydrology generation. The zero
// value is usable; sensible defaults are applied by withDefaults. Every pass
// carries an explicit budget (grid extent, step count, flood-fill cell cap)
// so start-up time stays bounded for pathological seeds.
type Config struct {
	// CenterX and CenterZ locate the search area, normally the island centre.
	CenterX float64 `toml:"center_x"`
	CenterZ float64 `toml:"center_z"`
	// SearchRadius bounds the square region scanned for peaks and lakes.
	SearchRadius float64 `toml:"search_radius"`

	// PeakSpacing is the grid spacing of the peak scan. NeighbourDistance is
	// the sample distance of the 8-neighbour local-maximum test.
	PeakSpacing       float64 `toml:"peak_spacing"`
	NeighbourDistance float64 `toml:"neighbour_distance"`
	// MinPeakHeight filters candidates; MinPeakSeparation keeps accepted
	// sources apart; MaxRivers caps the main river count.
	MinPeakHeight     float64 `toml:"min_peak_height"`
	MinPeakSeparation float64 `toml:"min_peak_separation"`
	MaxRivers         int     `toml:"max_rivers"`

	// StepSize is the tracing step in metres, MaxSteps the per-river budget.
	// Paths with fewer than MinRiverPoints points are discarded.
	StepSize       float64 `toml:"step_size"`
	MaxSteps       int     `toml:"max_steps"`
	MinRiverPoints int     `toml:"min_river_points"`
	// StartWidth, WidthGrowth (per metre) and MaxWidth shape the channel.
	StartWidth  float64 `toml:"start_width"`
	WidthGrowth float64 `toml:"width_growth"`
	MaxWidth    float64 `toml:"max_width"`
	// MeanderStrength is the maximum random rotation, in radians, applied to
	// the downhill direction each step.
	MeanderStrength float64 `toml:"meander_strength"`

	// CarveDepth is the full channel depth. CarveFalloff is the bank distance
	// over which the carve fades out, raised to CarveFalloffExponent. The 3.0
	// default matches the historically inlined constant.
	CarveDepth           float64 `toml:"carve_depth"`
	CarveFalloff         float64 `toml:"carve_falloff"`
	CarveFalloffExponent float64 `toml:"carve_falloff_exponent"`

	// Tributary spawning: every TributaryInterval points along a main river,
	// above TributaryMinHeight, a tributary spawns with TributaryChance. Its
	// source must sit TributaryMinRise above the junction, found within
	// TributarySearchRadius in at most TributaryAttempts random directions.
	TributaryInterval     int     `toml:"tributary_interval"`
	TributaryChance       float64 `toml:"tributary_chance"`
	TributaryMinHeight    float64 `toml:"tributary_min_height"`
	TributaryMinRise      float64 `toml:"tributary_min_rise"`
	TributarySearchRadius float64 `toml:"tributary_search_radius"`
	TributaryAttempts     int     `toml:"tributary_attempts"`
	// TributaryWidthScale scales the tributary width cap relative to its
	// junction width on the parent. TributaryPull blends the downhill
	// direction with the pull toward the parent. ConfluenceDistance is the
	// distance at which the tributary joins and tracing stops.
	TributaryWidthScale    float64 `toml:"tributary_width_scale"`
	TributaryPull          float64 `toml:"tributary_pull"`
	ConfluenceDistance     float64 `toml:"confluence_distance"`
	MaxTributariesPerRiver int     `toml:"max_tributaries_per_river"`

	// Lake detection: candidates are grid-sampled at LakeSpacing. A candidate
	// below water level is an inland depression if at least LakeRimRatio of 8
	// samples at LakeRimRadius sit more than LakeRimHeight above water level.
	LakeSpacing   float64 `toml:"lake_spacing"`
	LakeRimRadius float64 `toml:"lake_rim_radius"`
	LakeRimRatio  float64 `toml:"lake_rim_ratio"`
	LakeRimHeight float64 `toml:"lake_rim_height"`
	// Flood fill runs on a secondary grid of LakeCellSize cells, bounded to
	// LakeMaxCells. Depressions closer than twice MinLakeRadius to an
	// accepted lake are skipped.
	LakeCellSize  float64 `toml:"lake_cell_size"`
	LakeMaxCells  int     `toml:"lake_max_cells"`
	MinLakeRadius float64 `toml:"min_lake_radius"`
	MaxLakes      int     `toml:"max_lakes"`
}

// DefaultConfig returns the configuration all fields default to when left
// zero.
func DefaultConfig() Config {
	return Config{
		SearchRadius: 1600,

		PeakSpacing:       64,
		NeighbourDistance: 24,
		MinPeakHeight:     32,
		MinPeakSeparation: 380,
		MaxRivers:         8,

		StepSize:        6,
		MaxSteps:        1600,
		MinRiverPoints:  12,
		StartWidth:      1.5,
		WidthGrowth:     0.015,
		MaxWidth:        11,
		MeanderStrength: 0.35,

		CarveDepth:           2.6,
		CarveFalloff:         7,
		CarveFalloffExponent: 3.0,

		TributaryInterval:      14,
		TributaryChance:        0.35,
		TributaryMinHeight:     14,
		TributaryMinRise:       10,
		TributarySearchRadius:  220,
		TributaryAttempts:      6,
		TributaryWidthScale:    0.55,
		TributaryPull:          0.45,
		ConfluenceDistance:     9,
		MaxTributariesPerRiver: 3,

		LakeSpacing:   56,
		LakeRimRadius: 40,
		LakeRimRatio:  0.6,
		LakeRimHeight: 3,
		LakeCellSize:  8,
		LakeMaxCells:  1000,
		MinLakeRadius: 18,
		MaxLakes:      16,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SearchRadius == 0 {
		c.SearchRadius = def.SearchRadius
	}
	if c.PeakSpacing == 0 {
		c.PeakSpacing = def.PeakSpacing
	}
	if c.NeighbourDistance == 0 {
		c.NeighbourDistance = def.NeighbourDistance
	}
	if c.MinPeakHeight == 0 {
		c.MinPeakHeight = def.MinPeakHeight
	}
	if c.MinPeakSeparation == 0 {
		c.MinPeakSeparation = def.MinPeakSeparation
	}
	if c.MaxRivers == 0 {
		c.MaxRivers = def.MaxRivers
	}
	if c.StepSize == 0 {
		c.StepSize = def.StepSize
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = def.MaxSteps
	}
	if c.MinRiverPoints == 0 {
		c.MinRiverPoints = def.MinRiverPoints
	}
	if c.StartWidth == 0 {
		c.StartWidth = def.StartWidth
	}
	if c.WidthGrowth == 0 {
		c.WidthGrowth = def.WidthGrowth
	}
	if c.MaxWidth == 0 {
		c.MaxWidth = def.MaxWidth
	}
	if c.MeanderStrength == 0 {
		c.MeanderStrength = def.MeanderStrength
	}
	if c.CarveDepth == 0 {
		c.CarveDepth = def.CarveDepth
	}
	if c.CarveFalloff == 0 {
		c.CarveFalloff = def.CarveFalloff
	}
	if c.CarveFalloffExponent == 0 {
		c.CarveFalloffExponent = def.CarveFalloffExponent
	}
	if c.TributaryInterval == 0 {
		c.TributaryInterval = def.TributaryInterval
	}
	if c.TributaryChance == 0 {
		c.TributaryChance = def.TributaryChance
	}
	if c.TributaryMinHeight == 0 {
		c.TributaryMinHeight = def.TributaryMinHeight
	}
	if c.TributaryMinRise == 0 {
		c.TributaryMinRise = def.TributaryMinRise
	}
	if c.TributarySearchRadius == 0 {
		c.TributarySearchRadius = def.TributarySearchRadius
	}
	if c.TributaryAttempts == 0 {
		c.TributaryAttempts = def.TributaryAttempts
	}
	if c.TributaryWidthScale == 0 {
		c.TributaryWidthScale = def.TributaryWidthScale
	}
	if c.TributaryPull == 0 {
		c.TributaryPull = def.TributaryPull
	}
	if c.ConfluenceDistance == 0 {
		c.ConfluenceDistance = def.ConfluenceDistance
	}
	if c.MaxTributariesPerRiver == 0 {
		c.MaxTributariesPerRiver = def.MaxTributariesPerRiver
	}
	if c.LakeSpacing == 0 {
		c.LakeSpacing = def.LakeSpacing
	}
	if c.LakeRimRadius == 0 {
		c.LakeRimRadius = def.LakeRimRadius
	}
	if c.LakeRimRatio == 0 {
		c.LakeRimRatio = def.LakeRimRatio
	}
	if c.LakeRimHeight == 0 {
		c.LakeRimHeight = def.LakeRimHeight
	}
	if c.LakeCellSize == 0 {
		c.LakeCellSize = def.LakeCellSize
	}
	if c.LakeMaxCells == 0 {
		c.LakeMaxCells = def.LakeMaxCells
	}
	if c.MinLakeRadius == 0 {
		c.MinLakeRadius = def.MinLakeRadius
	}
	if c.MaxLakes == 0 {
		c.MaxLakes = def.MaxLakes
	}
	return c
}
