package constants

// Marketplace roles carried in session token claims.
const (
	RoleConsumer = "consumer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"

	// RoleAny allows any authenticated user regardless of role.
	RoleAny = "any"
)
