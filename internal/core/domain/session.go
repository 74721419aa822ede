package domain

import "strings"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole maps the service's role text to a Role. Anything other than
// ADMIN is treated as a customer.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleCustomer
}

type Session struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// SessionSnapshot is the persisted form of a live session and its bearer
// token.
type SessionSnapshot struct {
	Session Session `json:"session"`
	Token   string  `json:"token"`
}

type Credentials struct {
	Email    string
	Password string
}

type Profile struct {
	UserID      string
	Name        string
	Email       string
	Role        Role
	Address     string
	PhoneNumber string
}

type Registration struct {
	Name        string
	Email       string
	Password    string
	Address     string
	PhoneNumber string
}

type ProfileUpdate struct {
	Name        string
	Email       string
	Address     string
	PhoneNumber string
}
