// Package assign converts active cases into resource-matching decisions.
//
// For each requested case the engine selects the case's zone resources,
// computes a deterministic priority tag, and asks the decision oracle
// for a structured assignment. Zones with no available personnel
// short-circuit to an unassigned outcome without consulting the oracle.
// Decisions are ephemeral: they are returned to the caller and never
// persisted.
package assign
