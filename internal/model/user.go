package model

import "time"

// Roles a user account can hold. The role is fixed at registration
// and never changes afterwards.
const (
	RoleFarmer = "FARMER"
	RoleBuyer  = "BUYER"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier (UUID).
//  Email        – unique email address, stored lower-cased.
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name of the user.
//  PhoneNumber  – contact number in international form.
//  Role         – FARMER or BUYER.
//  IsActive     – whether the account is active; deactivated users
//                 cannot authenticate.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	PhoneNumber  string    // users.phone_number
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Profile is the 1:1 extension row in `user_profiles`. Location is
// required for farmers and optional for buyers; farm size is only
// meaningful for farmers.
//
// Fields:
//  UserID   – owning user (primary key and foreign key).
//  Location – optional free-text location.
//  FarmSize – optional farm size in acres (positive).
type Profile struct {
	UserID   string   // user_profiles.user_id
	Location *string  // user_profiles.location (nullable)
	FarmSize *float64 // user_profiles.farm_size (nullable)
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries metadata for expiry
// and revocation. The plain token is not stored; only its SHA-256
// hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
