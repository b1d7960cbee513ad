package postprocessors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/postprocessors/chunker"
)

func stubBuilder(name string) Builder {
	return func(map[string]any) (driven.PostProcessor, error) {
		return &stubStage{name: name}, nil
	}
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("alpha", stubBuilder("alpha")))

	stage, err := r.Build("alpha", nil)

	require.NoError(t, err)
	assert.Equal(t, "alpha", stage.Name())
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("alpha", stubBuilder("alpha")))

	assert.Error(t, r.Register("alpha", stubBuilder("other")))
}

func TestRegistry_UnknownName(t *testing.T) {
	_, err := NewRegistry().Build("nonexistent", nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = NewDefaultRegistry().BuildPipeline([]string{"chunker", "missing"}, nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())

	require.NoError(t, r.Register("beta", stubBuilder("beta")))
	require.NoError(t, r.Register("alpha", stubBuilder("alpha")))

	assert.Equal(t, []string{"alpha", "beta"}, r.Names())
	assert.Equal(t, []string{"chunker", "dedupe"}, NewDefaultRegistry().Names())
}

func TestBuildChunker(t *testing.T) {
	tests := []struct {
		name        string
		cfg         map[string]any
		wantSize    int
		wantOverlap int
		wantErr     bool
	}{
		{"nil config", nil, chunker.DefaultChunkSize, chunker.DefaultChunkOverlap, false},
		{"int values", map[string]any{"chunk_size": 500, "overlap": 100}, 500, 100, false},
		{"toml int64", map[string]any{"chunk_size": int64(800), "overlap": int64(0)}, 800, 0, false},
		{"json float", map[string]any{"chunk_size": float64(600)}, 600, chunker.DefaultChunkOverlap, false},
		{"fractional", map[string]any{"chunk_size": 600.5}, 0, 0, true},
		{"string", map[string]any{"overlap": "100"}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := buildChunker(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			c, ok := stage.(*chunker.Processor)
			require.True(t, ok)
			assert.Equal(t, tt.wantSize, c.ChunkSize())
			assert.Equal(t, tt.wantOverlap, c.Overlap())
		})
	}
}
