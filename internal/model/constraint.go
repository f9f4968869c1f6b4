package model

// Constraint is an ancestor-anchored guard (spec.md §3, grounded on
// _examples/original_source/src/models/constraint.rs): walking up from the
// candidate node, the first ancestor matching Matcher must exist, and none
// of ForbiddenQueries may match anywhere within that ancestor's subtree.
type Constraint struct {
	// Matcher is the query template (may itself hold unresolved holes)
	// that locates the ancestor scope the constraint applies within.
	Matcher string
	// ForbiddenQueries are query templates that must NOT match anywhere
	// inside the matcher's scope for the constraint to be satisfied.
	ForbiddenQueries []string
}
