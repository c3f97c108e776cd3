// Package store persists committed changes and document snapshots in a
// sqlite database.
//
// The store is a collaborator of the engine: Attach subscribes to an
// engine's change events and appends each one to the change log, writing
// a snapshot on attach and every few revisions. Restore rebuilds a document
// from the latest snapshot plus the changes recorded after it.
//
// Revisions in the log continue across sessions. An attachment offsets the
// engine's revisions by the last revision already stored for the document.
package store
