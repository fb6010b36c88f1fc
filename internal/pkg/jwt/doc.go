// Package jwt is helpers for working with JSON Web Tokens (JWT).
//
// It includes:
//   - A typed Claims wrapper (registered claims + strongly-typed payload).
//   - A symmetric HS512 implementation minting two token classes: full
//     session tokens and short-lived pending tokens for two-factor login.
//   - Context helpers for storing and retrieving authenticated claims.
package jwt
