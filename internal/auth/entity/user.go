package entity

// User is the identity record created at registration.
type User struct {
	ID       int64
	Email    string
	FullName string
	// Password is the bcrypt hash of the account password.
	Password string
}
