package models

import "time"

type User struct {
	ID           string    `bson:"id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"` // Don't return password hash in JSON
	FullName     string    `bson:"full_name" json:"full_name"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
}

// Public returns a copy of the account without the password hash.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
