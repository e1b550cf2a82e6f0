package types

import "time"

// AuthProvider identifies how an account authenticates.
type AuthProvider string

// Supported authentication providers. Only local accounts can register
// through the API; the remaining values are reserved for federated sign-in.
const (
	AuthProviderLocal    AuthProvider = "local"
	AuthProviderGoogle   AuthProvider = "google"
	AuthProviderLinkedIn AuthProvider = "linkedin"
	AuthProviderGitHub   AuthProvider = "github"
)

// User represents an account in the system.
// It contains identity, credential, and audit metadata.
type User struct {
	// ID is the unique identifier of the account.
	ID string `json:"user_id" db:"user_id"`

	// Email is the account's login address. It is stored trimmed and
	// lowercased and is unique across all accounts.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// AuthProvider records how the account signs in.
	AuthProvider AuthProvider `json:"auth_provider" db:"auth_provider"`

	// AuthProviderID is the subject identifier issued by a federated
	// provider. Empty for local accounts.
	AuthProviderID string `json:"auth_provider_id,omitempty" db:"auth_provider_id"`

	// LastLogin is the time of the most recent successful login.
	LastLogin *time.Time `json:"last_login" db:"last_login"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
