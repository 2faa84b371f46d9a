package models

import "time"

// User is a stored account. PasswordHash never leaves the server; use Public
// for anything sent to a client.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-facing view of an account.
type PublicUser struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Ref returns the short creator reference embedded in share links.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username, Email: u.Email}
}

// UserRef identifies a link creator.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserStats is the admin dashboard summary.
type UserStats struct {
	TotalUsers   int `json:"totalUsers"`
	AdminUsers   int `json:"adminUsers"`
	RegularUsers int `json:"regularUsers"`
	RecentUsers  int `json:"recentUsers"`
}
