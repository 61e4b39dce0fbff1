package handler

import (
	"category-api/internal/auth"
	"category-api/internal/logger"
	"category-api/internal/middleware"
	"category-api/internal/session"
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/casbin/casbin/v2"
)

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth     *auth.Authenticator
	session  session.Manager
	enforcer casbin.IEnforcer
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler. a may be nil when no OIDC
// provider is configured; login then answers 503.
func NewAuthHandler(a *auth.Authenticator, sm session.Manager, e casbin.IEnforcer, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, session: sm, enforcer: e, log: log}
}

type meResponse struct {
	Subject   string   `json:"subject"`
	Anonymous bool     `json:"anonymous"`
	Roles     []string `json:"roles"`
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Login is not configured", http.StatusServiceUnavailable)
		return
	}
	state, err := randString(16)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback is the redirect URL for the OIDC provider.
// It handles the code exchange and token verification, then stores the
// subject in the session.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Login is not configured", http.StatusServiceUnavailable)
		return
	}
	stateCookie, err := r.Cookie("state")
	if err != nil {
		http.Error(w, "state cookie not found", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "state did not match", http.StatusBadRequest)
		return
	}

	oauth2Token, err := h.auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error(err, "Failed to exchange token")
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "No id_token field in oauth2 token", http.StatusInternalServerError)
		return
	}

	// The OIDC library checks the issuer, audience, and expiry.
	idToken, err := h.auth.IDTokenVerifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		h.log.Error(err, "Failed to verify ID token")
		http.Error(w, "Failed to verify ID Token", http.StatusInternalServerError)
		return
	}

	// Logged-in users keep every permission anonymous visitors have.
	if err := auth.EnsureUser(h.enforcer, idToken.Subject); err != nil {
		h.log.Error(err, "Failed to assign default role")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Prevent session fixation.
	if err := h.session.RenewToken(r.Context()); err != nil {
		h.log.Error(err, "Failed to renew session token")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), middleware.SessionSubjectKey, idToken.Subject)
	h.log.With(map[string]interface{}{"subject": idToken.Subject}).Info("user logged in")

	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout destroys the session and sends the user home.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Destroy(r.Context()); err != nil {
		h.log.Error(err, "Failed to destroy session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// meHandler reports who the caller is and which roles they hold.
func (h *AuthHandler) meHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserInfo(r.Context())
	roles, err := h.enforcer.GetImplicitRolesForUser(user.Subject)
	if err != nil {
		h.log.Error(err, "Failed to resolve roles")
		middleware.WriteError(w, http.StatusInternalServerError, "internal:error", "roles", "Failed to resolve roles")
		return
	}
	if roles == nil {
		roles = []string{}
	}
	_ = middleware.WriteJSON(w, http.StatusOK, meResponse{
		Subject:   user.Subject,
		Anonymous: user.IsAnonymous(),
		Roles:     roles,
	})
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
