// Package indexing builds the semantic chunk index from the case table.
//
// A rebuild composes each case's searchable text, splits it into
// overlapping chunks, embeds the chunks in concurrent batches with
// retry, and publishes the finished entries in one atomic replacement.
// There is no incremental update path: any change to the case table
// requires a full rebuild, and a failed rebuild leaves the previous
// index generation untouched.
package indexing
