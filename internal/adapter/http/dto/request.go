package dto

import (
	"errors"
	"strings"

	"github.com/iho/txingest/internal/domain"
)

// IssueTokenRequest asks for an operator token.
type IssueTokenRequest struct {
	Subject string      `json:"subject"`
	Role    domain.Role `json:"role"`
}

// Validate normalizes and checks the request.
func (r *IssueTokenRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" {
		return errors.New("subject is required")
	}
	if !r.Role.IsValid() {
		return errors.New("role must be one of admin, operator, viewer")
	}
	return nil
}
