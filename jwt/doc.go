// Package jwt mints and verifies the signed, expiring session tokens issued
// after a successful login. Tokens carry the authenticated subject in the
// registered "sub" claim; expiry is the only lifetime bound.
package jwt
