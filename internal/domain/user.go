package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	PhoneNo   string    `json:"phoneNo,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthData is the payload returned by login and register.
type AuthData struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}
