// Package hash provides helpers for hashing and verifying secrets.
//
// Store only the hash, then verify user input by comparing the plaintext
// against the stored hash. Bcrypt is used for account passwords and Argon2id
// for backup codes; both sit behind the same small interface.
package hash
