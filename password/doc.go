// Package password implements password hashing and verification with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Every call to [Hasher.Hash] draws a fresh random salt, so hashing the same
// password twice yields different strings that both verify.
//
// # Dummy hash
//
// The [Hasher] also owns one precomputed hash of a fixed non-secret password,
// produced with the same cost parameters as real accounts. Login flows verify
// unknown identifiers against it so that "no such user" and "wrong password"
// take indistinguishable wall-clock time.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (length,
// character classes) is enforced by the Engine's registration validator.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other package of this module.
//   - Log plaintext passwords or hash parameters at runtime.
package password
