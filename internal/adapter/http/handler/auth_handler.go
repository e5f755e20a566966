package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/txingest/internal/adapter/http/dto"
	"github.com/iho/txingest/internal/adapter/http/middleware"
	"github.com/iho/txingest/internal/domain"
)

// TokenIssuer issues operator tokens.
type TokenIssuer interface {
	Generate(subject string, role domain.Role) (string, error)
}

// AuthHandler lets admins issue tokens for other operators.
type AuthHandler struct {
	issuer TokenIssuer
	logger zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(issuer TokenIssuer, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		issuer: issuer,
		logger: logger,
	}
}

// IssueToken handles POST /api/v1/auth/token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	token, err := h.issuer.Generate(req.Subject, req.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", err.Error())
		return
	}

	issuedBy := "unknown"
	if op, ok := middleware.GetOperatorFromContext(r.Context()); ok {
		issuedBy = op.Subject
	}
	h.logger.Info().
		Str("subject", req.Subject).
		Str("role", string(req.Role)).
		Str("issued_by", issuedBy).
		Msg("operator token issued")

	writeJSON(w, http.StatusCreated, dto.TokenResponse{
		Token:   token,
		Subject: req.Subject,
		Role:    req.Role,
	})
}
