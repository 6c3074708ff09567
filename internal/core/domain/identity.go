package domain

import "time"

// Identity models a registered user.
type Identity struct {
	ID           string    `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session is the verified content of a bearer token. It lives only for the
// duration of one request.
type Session struct {
	Username  string
	Role      Role
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
