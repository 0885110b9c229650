// Package daho is the credential-authentication core of the daho backend:
// registration with salted argon2id password hashes, login with
// timing-equalized verification, a per-account lockout policy against
// brute-force guessing, and signed expiring session tokens.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// daho is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (RegisterRequest, AuditEvent, MetricsSnapshot). Password
// hashing lives in password/, token signing in jwt/, and record storage
// behind the directory.Directory contract. HTTP routing, rate limiting at
// the network edge, TLS, and cookie transport are external collaborators.
//
// # Security contract
//
// Login verifies against a real-cost hash whether or not the account
// exists: unknown identifiers are checked against a precomputed dummy hash
// so response timing does not disclose account existence, and unknown
// identifier and wrong password share one error and message. Locked
// accounts are rejected before verification. Raw passwords never reach
// logs or audit events.
package daho
