package handler

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/doodlechef/doodlechef/internal/api/middleware"
	"github.com/doodlechef/doodlechef/internal/api/models"
	"github.com/doodlechef/doodlechef/internal/api/response"
	"github.com/doodlechef/doodlechef/internal/auth"
)

// AdminHandler handles the parent login and logout endpoints.
type AdminHandler struct {
	pins          *auth.PINVerifier
	sessions      *auth.SessionService
	lockouts      *auth.LockoutTracker
	secureCookies bool
	logger        zerolog.Logger
}

// AdminHandlerConfig holds dependencies for the AdminHandler.
type AdminHandlerConfig struct {
	PINVerifier   *auth.PINVerifier
	Sessions      *auth.SessionService
	Lockouts      *auth.LockoutTracker
	SecureCookies bool
	Logger        zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cfg AdminHandlerConfig) *AdminHandler {
	return &AdminHandler{
		pins:          cfg.PINVerifier,
		sessions:      cfg.Sessions,
		lockouts:      cfg.Lockouts,
		secureCookies: cfg.SecureCookies,
		logger:        cfg.Logger,
	}
}

// Login handles POST /v1/admin/login - exchange the parent PIN for a session.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	clientKey := clientIP(r)

	if h.lockouts.IsLockedOut(clientKey) {
		response.TooManyRequests(w, r, "Too many attempts. Try again later.")
		return
	}

	var input models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.PIN == "" {
		response.BadRequest(w, r, "pin is required", nil)
		return
	}

	if h.pins == nil {
		h.logger.Error().Msg("admin PIN hash not configured")
		response.InternalError(w, r, "server configuration error")
		return
	}

	if err := h.pins.Verify(input.PIN); err != nil {
		h.lockouts.RecordFailure(clientKey)
		h.logger.Warn().Str("client", clientKey).Msg("failed login attempt")
		response.Unauthorized(w, r, "incorrect PIN")
		return
	}

	h.lockouts.Clear(clientKey)

	token, _, err := h.sessions.Issue()
	if err != nil {
		h.logger.Error().Err(err).Msg("session issue failed")
		response.InternalError(w, r, "could not create session")
		return
	}

	middleware.SetSessionCookie(w, token, int(auth.SessionTTL.Seconds()), h.secureCookies)
	response.JSON(w, r, http.StatusOK, models.LoginResponse{OK: true})
}

// Logout handles POST /v1/admin/logout - clear the session cookie.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, h.secureCookies)
	response.JSON(w, r, http.StatusOK, models.LoginResponse{OK: true})
}

// clientIP picks the lockout key for a request. RealIP middleware has
// already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
