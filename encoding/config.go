package encoding

// Config carries the core's few tunables. No config-file library is used —
// neither the teacher nor any other example repo in the corpus depends on
// one, so a plain struct with documented defaults matches the ambient
// absence of that concern rather than introducing a dependency nothing else
// needs.
type Config struct {
	// BatchRoundSize overrides BatchRoundSize when > 0.
	BatchRoundSize int
	// BufferGrowthHeadroom overrides BufferGrowthHeadroom when > 0.
	BufferGrowthHeadroom float64
}

// DefaultConfig returns the spec-mandated defaults.
func DefaultConfig() Config {
	return Config{
		BatchRoundSize:        BatchRoundSize,
		BufferGrowthHeadroom:  BufferGrowthHeadroom,
	}
}

func (c Config) batchRoundSize() int {
	if c.BatchRoundSize > 0 {
		return c.BatchRoundSize
	}
	return BatchRoundSize
}

func (c Config) headroom() float64 {
	if c.BufferGrowthHeadroom > 0 {
		return c.BufferGrowthHeadroom
	}
	return BufferGrowthHeadroom
}
