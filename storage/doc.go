// Package storage defines the persistence contracts for the reference
// tables and the chunk index, plus the MUS byte serializers shared by
// their implementations.
//
// Both stores follow a replace-by-swap discipline: loads and index
// rebuilds assemble the complete new contents off to the side, then
// publish them atomically. Readers never observe a half-applied
// replacement. See the badger subpackage for the on-disk
// implementation.
package storage
