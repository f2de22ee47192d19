// Package agent coordinates task processing: one oracle call classifies
// a task description into an intent (assignment, query, data
// management), and the coordinator dispatches to the matching
// capabilities, possibly several when the classification names multiple
// agents. Sub-handler failures are scoped to their own response section;
// an unclassifiable task falls back to query handling.
package agent
