// Package sqlite provides a SQLite-based implementation of the lexcheck
// storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It implements two store interfaces through a single
// database connection:
//
//   - ReportStore: analysis report persistence
//   - VectorIndex: knowledge-base passages and their embeddings
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files, and
// each up migration records its own version in schema_migrations.
//
// # Vector Search
//
// Embeddings are stored as little-endian float32 blobs. Search scans every
// passage and ranks by cosine similarity, which is adequate for a
// regulation corpus of a few thousand passages.
//
// # Data Location
//
// By default, the database is stored at ~/.lexcheck/data/lexcheck.db
package sqlite
