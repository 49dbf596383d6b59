// Package postgres implements membership.Storage on PostgreSQL via pgx.
//
// The subscription compare-and-swap is carried by a version column: updates
// are conditional on the version the caller read, and an insert racing
// another insert for the same user trips the user_id unique constraint. Both
// outcomes surface as membership.ErrVersionConflict.
package postgres
