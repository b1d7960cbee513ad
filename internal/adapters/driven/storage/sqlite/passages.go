package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexcheck/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// passageIndex implements driven.VectorIndex with a full scan ranked by
// cosine similarity.
type passageIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*passageIndex)(nil)

// Add inserts or replaces passages from source.
func (p *passageIndex) Add(ctx context.Context, source string, chunks []domain.Chunk) error {
	tx, err := p.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, source, position, content, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			position = excluded.position,
			content = excluded.content,
			embedding = excluded.embedding,
			dimensions = excluded.dimensions
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("passage %s from %s has no embedding", chunk.ID, source)
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, source, chunk.Position, chunk.Content,
			float32SliceToBytes(chunk.Embedding), len(chunk.Embedding)); err != nil {
			return fmt.Errorf("saving passage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteSource removes every passage from source.
func (p *passageIndex) DeleteSource(ctx context.Context, source string) error {
	if _, err := p.store.db.ExecContext(ctx, `DELETE FROM passages WHERE source = ?`, source); err != nil {
		return fmt.Errorf("deleting passages: %w", err)
	}
	return nil
}

// Search ranks passages whose embedding has the query's dimensions.
func (p *passageIndex) Search(ctx context.Context, query []float32, k int) ([]domain.Passage, error) {
	if k <= 0 || len(query) == 0 {
		return []domain.Passage{}, nil
	}

	rows, err := p.store.db.QueryContext(ctx, `
		SELECT id, source, content, embedding FROM passages WHERE dimensions = ?
	`, len(query))
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	ranker := similarity.NewRanker(query, k)
	for rows.Next() {
		var passage domain.Passage
		var blob []byte
		if err := rows.Scan(&passage.ID, &passage.Source, &passage.Content, &blob); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		ranker.Offer(passage, bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	return ranker.Results(), nil
}

// Count returns the number of stored passages.
func (p *passageIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the connection.
func (p *passageIndex) Close() error {
	return nil
}
