package hash

// Hash defines one-way hashing and verification of secrets.
type Hash interface {
	// Hash takes a plaintext string and returns its hashed representation.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the hashed value.
	Verify(hashed, plaintext string) bool
}
