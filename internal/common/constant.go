package common

// AuthorizationHeaderName carries the session token as "Bearer <token>".
const AuthorizationHeaderName = "Authorization"

// Roles a user record may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
