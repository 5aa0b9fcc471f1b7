package domain

import "time"

// UserRole distinguishes regular back-office users from the account's
// principal administrator.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User is an acting back-office user. IsPrincipalAdmin gates movement
// deletion.
type User struct {
	UserID           string     `json:"userID"`
	Username         string     `json:"username"`
	Name             string     `json:"name"`
	Role             UserRole   `json:"role"`
	IsPrincipalAdmin bool       `json:"isPrincipalAdmin"`
	PasswordHash     string     `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty"`
}
