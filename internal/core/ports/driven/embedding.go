package driven

import "context"

// EmbeddingService turns text into vectors for the regulation index.
// Analysis runs without one; only retrieval and knowledge-base indexing
// need it. Vectors from one service all have Dimensions() entries.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}
