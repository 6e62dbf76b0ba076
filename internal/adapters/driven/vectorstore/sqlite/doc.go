// Package sqlite provides a SQLite-backed safety index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Documents of every category share one named collection
// in a single database file. Embeddings are stored as little-endian float32
// blobs and ranked by cosine similarity in process.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files.
//
// # Data Location
//
// By default, the database is stored at ~/.pillmate/data/safety.db
package sqlite
