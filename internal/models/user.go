package models

import "time"

// UserRole represents the access level of a user.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         UserRole  `db:"role" json:"role"`
	Bio          *string   `db:"bio" json:"bio,omitempty"`
	Avatar       *string   `db:"avatar" json:"avatar,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the directory view exposed to authenticated users
// when picking a message recipient.
type UserSummary struct {
	ID     string   `db:"id" json:"id"`
	Name   string   `db:"name" json:"name"`
	Email  string   `db:"email" json:"email"`
	Avatar *string  `db:"avatar" json:"avatar,omitempty"`
	Role   UserRole `db:"role" json:"role"`
}

// UserDetail enriches User with activity counts for the admin back-office.
type UserDetail struct {
	ID               string    `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	Name             string    `db:"name" json:"name"`
	Role             UserRole  `db:"role" json:"role"`
	Bio              *string   `db:"bio" json:"bio,omitempty"`
	Avatar           *string   `db:"avatar" json:"avatar,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	SentMessages     int       `db:"sent_messages" json:"sent_messages"`
	ReceivedMessages int       `db:"received_messages" json:"received_messages"`
	Enrollments      int       `db:"enrollments" json:"enrollments"`
}

// Profile is the self view returned by the profile endpoints.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Bio       *string   `db:"bio" json:"bio,omitempty"`
	Avatar    *string   `db:"avatar" json:"avatar,omitempty"`
	Role      UserRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
