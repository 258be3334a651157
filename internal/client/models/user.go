// Package models defines the DevMatch API data shapes used by the client.
package models

import "time"

// Role is the account role assigned at registration.
type Role string

const (
	RoleDeveloper Role = "DEVELOPER"
	RoleRecruiter Role = "RECRUITER"
	RoleAdmin     Role = "ADMIN"
)

// User is the authenticated account identity.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile carries the role-specific public profile. Developer accounts use
// headline/bio/skills, recruiter accounts use companyName/website.
type Profile struct {
	Headline    string   `json:"headline,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Location    string   `json:"location,omitempty"`
	CompanyName string   `json:"companyName,omitempty"`
	Website     string   `json:"website,omitempty"`
}

// Credentials is the payload of a successful login or registration.
type Credentials struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Account is the "current user" shape returned by GET /auth/me:
// the user fields flattened at the top level plus the nested profile.
type Account struct {
	User
	Profile *Profile `json:"profile,omitempty"`
}
