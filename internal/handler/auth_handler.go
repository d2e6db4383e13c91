package handler

import (
	"net/http"

	"stock-empire/internal/container"
	"stock-empire/internal/domain"
	"stock-empire/internal/middleware"
	"stock-empire/pkg/errors"
)

// AuthHandler handles authentication related requests
type AuthHandler struct {
	container *container.Container
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(container *container.Container) *AuthHandler {
	return &AuthHandler{
		container: container,
	}
}

// MeResponse represents the signed-in viewer
type MeResponse struct {
	User         *domain.AuthClaims  `json:"user"`
	Tier         domain.Tier         `json:"tier"`
	Capabilities []domain.Capability `json:"capabilities"`
	Success      bool                `json:"success"`
}

// GetMe handles GET /api/me
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	// Get claims from context (set by auth middleware)
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		logger.Error("Claims not found in context")
		sendErrorResponse(w, r, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	logger.WithField("user_id", claims.Sub).Debug("Getting viewer profile")

	response := MeResponse{
		User:         claims,
		Tier:         claims.Tier,
		Capabilities: claims.Tier.Capabilities(),
		Success:      true,
	}

	w.Header().Set("Cache-Control", "private, no-store")
	respondJSON(w, http.StatusOK, response, logger)
}
