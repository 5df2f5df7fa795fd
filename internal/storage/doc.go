// Package storage persists job run history so operators can answer "did the
// report go out yesterday?" after a restart. Two drivers are provided: an
// append-only JSONL file store, and a sqlite store compiled in with the
// "sqlite" build tag.
package storage
