package domain

import (
	"strings"
	"time"
)

// Role names a membership granted to a user account.
type Role string

// Roles seeded at startup. A user normally holds exactly one of them.
const (
	RoleAdmin     Role = "Admin"
	RoleDietitian Role = "Dietitian"
	RoleClient    Role = "Client"
)

// AllRoles lists every role the system knows about.
var AllRoles = []Role{RoleAdmin, RoleDietitian, RoleClient}

// Audit carries the bookkeeping fields every stored entity shares.
// The store maintains them; services never set them directly.
type Audit struct {
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
	IsDeleted bool       `bson:"isDeleted" json:"-"`
	DeletedAt *time.Time `bson:"deletedAt,omitempty" json:"-"`
}

// SecretToken is a one-shot token (email confirmation, password reset).
// Only the hash is persisted.
type SecretToken struct {
	Hash      string    `bson:"hash"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

// User is the account identity behind every Admin, Dietitian and Client.
type User struct {
	ID              int64  `bson:"_id" json:"id"`
	FirstName       string `bson:"firstName" json:"firstName"`
	LastName        string `bson:"lastName" json:"lastName"`
	Email           string `bson:"email" json:"email"`
	NormalizedEmail string `bson:"normalizedEmail" json:"-"` // unique, lower-cased
	PhoneNumber     string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	PasswordHash    string `bson:"passwordHash" json:"-"` // Never expose this via JSON
	EmailConfirmed  bool   `bson:"emailConfirmed" json:"emailConfirmed"`
	Roles           []Role `bson:"roles" json:"roles"`

	EmailConfirmationToken *SecretToken `bson:"emailConfirmationToken,omitempty" json:"-"`
	PasswordResetToken     *SecretToken `bson:"passwordResetToken,omitempty" json:"-"`

	Audit `bson:",inline"`
}

// FullName joins first and last name the way responses display it.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole returns the first role, which is what tokens and responses report.
func (u *User) PrimaryRole() Role {
	if len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0]
}

// NormalizeEmail produces the lookup key used for the unique email index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
