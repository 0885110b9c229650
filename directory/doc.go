// Package directory stores user records for the authentication core.
//
// # Design
//
// [Directory] is the abstract contract: lookup by identifier, creation, and
// atomic mutation of lockout counters. Two implementations ship with the
// module: [Memory], a mutex-guarded map store for tests and single-process
// deployments, and [Redis], which keeps each record in a Redis hash and uses
// HINCRBY plus a Lua creation script so concurrent attempts against the same
// record never lose an update.
//
// # Architecture boundaries
//
// The directory is the sole owner of record state. Callers receive copies,
// never aliases into the store, and all counter updates go through directory
// methods. Lockout policy (when to lock, for how long) is decided by the
// Engine; the directory only records the outcome.
//
// # What this package must NOT do
//
//   - Hash or verify passwords — it stores opaque hash strings.
//   - Decide whether a record is admitted to login.
//   - Delete records; account deletion is not part of this core.
package directory
