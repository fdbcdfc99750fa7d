// Package auth supplies the authenticated-principal capability consumed by
// the file endpoints: HS256 JWT issuance and verification, bcrypt-hashed
// accounts in Postgres, a Redis-backed revocation list for logout, and chi
// middleware that turns a bearer token into a request-scoped Principal.
//
// The storage engine never looks inside the principal; endpoints only check
// that one is present, or that its role is admin for privileged operations.
package auth
