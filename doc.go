/*
Package chunkstore implements an append-only, single-file object store
with versioned commits. A store file holds a fixed header, a history of
index-array snapshots, and the chunk payloads those snapshots point at.
Every mutation is committed by appending new bytes to end-of-file and
rewriting the header in place to reference the latest snapshot, so the
file preserves a linked history of every prior commit.

See the store, header, index, and chunk sub-packages for the engine's
operations.
*/
package chunkstore
