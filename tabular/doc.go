// Package tabular reads the reference tables (cases, personnel,
// vehicles, zones) from tabular files into a storage.Snapshot. Case
// columns keep the upstream Spanish headers; headers are trimmed and
// lower-cased before matching, and rows that fail validation are
// dropped with a warning rather than failing the load.
package tabular
