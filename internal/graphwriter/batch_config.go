package graphwriter

// BatchConfig controls per-write-call batch sizing. Generalized from the
// teacher's internal/graph/batch_config.go, which keyed batch size by a
// fixed set of node labels (File/Function/Class/Commit/Developer) — our
// open label set keys off a single NodeBatchSize/EdgeBatchSize pair instead,
// since every kind now shares one upsert shape.
type BatchConfig struct {
	NodeBatchSize int
	EdgeBatchSize int
}

// DefaultBatchConfig mirrors the teacher's medium-repo defaults (spec §4.8:
// "default 1,000").
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{NodeBatchSize: 1000, EdgeBatchSize: 1000}
}

// SmallRepoBatchConfig matches the teacher's reduced-memory-pressure sizing
// for small repositories.
func SmallRepoBatchConfig() BatchConfig {
	return BatchConfig{NodeBatchSize: 200, EdgeBatchSize: 500}
}

// LargeRepoBatchConfig matches the teacher's maximum-throughput sizing for
// large repositories.
func LargeRepoBatchConfig() BatchConfig {
	return BatchConfig{NodeBatchSize: 2000, EdgeBatchSize: 5000}
}
