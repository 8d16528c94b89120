// Package harperdb is a client for the HarperDB operations API.
//
// # Handles
//
// [DB], [Schema], [Table] and [Record] are thin handles over a remote
// server. Navigating between them never touches the network:
//
//	dog := db.Schema("dev").Table("dog").Record(1)
//
// Every method that reads or writes data issues one or more fresh
// operations, so handles never hold state that can go stale. The only value
// a handle remembers is a table's hash attribute, which cannot change once
// the table exists.
//
// # Upsert
//
// [Table.Upsert] inserts the records and then updates the ones the server
// skipped because their key already existed. Records skipped by both
// operations are left out of the result rather than reported as an error.
//
// # Errors
//
// Server-reported failures are *connection.ServerError and match
// [connection.ErrServer]. A record addressed by key that does not exist is a
// *[NotFoundError] matching [ErrNotFound]; a field missing from an existing
// record is a *[MissingFieldError] matching [ErrMissingField].
//
// # Operation Client
//
// [DB.Ops] returns the [ops.Client] the handles are built on, with one
// method per HarperDB operation.
package harperdb
