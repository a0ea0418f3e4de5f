// Package conceptnet is a toolkit for working with the ConceptNet knowledge
// graph offline, without the need for a PostgreSQL server.
//
// # Overview
//
// The system is comprised of the following stages:
//
// 1. Ingestion
//
// A ConceptNet assertions dump is a single (usually gzipped) tab-separated file
// with one edge per line:
//
//	/a/[/r/IsA/,/c/en/cat/n/,/c/en/mammal/n/]  /r/IsA  /c/en/cat/n  /c/en/mammal/n  {"dataset": ...}
//
// The ingest package streams this file once and writes languages, labels,
// concepts, relations and edges into an embedded store, along with the
// indexes needed to walk the graph in either direction.
//
// Restricting the build to a handful of languages shrinks the resulting
// database substantially.
//
// 2. Connection
//
// The graph package opens an existing store read-only.
//
// 3. Query
//
// * Resolve label text (optionally scoped to a language) to concepts
// * Edges between two concept sets, optionally in both directions
// * All edges touching a concept set, optionally same-language only
// * Outgoing / incoming edges of a single concept
// * Traverse every label of a language
//
// The cmd/conceptnet program drives all of the above from the command-line and
// can also serve the query API over HTTP.
package conceptnet
