package domain

import "errors"

// Operator is the authenticated caller of an operator endpoint.
type Operator struct {
	Subject string
	Role    Role
}

// Role represents an operator's access level.
type Role string

const (
	// RoleAdmin can do everything an operator can and issue tokens.
	RoleAdmin Role = "admin"

	// RoleOperator can trigger pipeline runs.
	RoleOperator Role = "operator"

	// RoleViewer can only read transactions and summaries.
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanTrigger reports whether the role may start a pipeline run.
func (r Role) CanTrigger() bool {
	return r == RoleAdmin || r == RoleOperator
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
