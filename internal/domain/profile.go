package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile is a marketplace account.
// Active=false means the account is deactivated: the ban registry blocks it
// and any live session is terminated on detection.
type Profile struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Username     string     `json:"username" dynamodbav:"username"`
	Email        string     `json:"email" dynamodbav:"email"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Role         string     `json:"role" dynamodbav:"role"`
	Active       bool       `json:"active" dynamodbav:"active"`
	LastLogin    *time.Time `json:"last_login,omitempty" dynamodbav:"last_login"`
	LoginCount   int        `json:"login_count" dynamodbav:"login_count"`
	LastIP       string     `json:"-" dynamodbav:"last_ip"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// UserRole is a role grant. PK: user_id, SK: role.
// The admin grant is mirrored onto Profile.Role.
type UserRole struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Role      string    `json:"role" dynamodbav:"role"`
	GrantedAt time.Time `json:"granted_at" dynamodbav:"granted_at"`
}
