package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/postprocessors/chunker"
	"github.com/custodia-labs/lexcheck/internal/postprocessors/dedupe"
)

// NewDefaultRegistry returns a registry holding the built-in post-processors:
//
//   - chunker: chunk_size and overlap in characters
//   - dedupe: no settings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	// Names are distinct, so registration cannot fail.
	_ = r.Register("chunker", buildChunker)
	_ = r.Register("dedupe", buildDedupe)
	return r
}

func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if v, ok := cfg["chunk_size"]; ok {
		size, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("chunker: chunk_size: %w", err)
		}
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if v, ok := cfg["overlap"]; ok {
		overlap, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("chunker: overlap: %w", err)
		}
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

func buildDedupe(map[string]any) (driven.PostProcessor, error) {
	return dedupe.New(), nil
}

// toInt accepts the integer shapes TOML and JSON decoding produce.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
