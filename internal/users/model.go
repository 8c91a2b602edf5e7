package users

import "time"

// User is a registered account. PasswordHash never leaves the package.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
