package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"golang.org/x/oauth2"

	"kisansense/internal/config"
	"kisansense/internal/middleware"
	"kisansense/internal/models"
	"kisansense/internal/validation"
)

// OfficerUpserter stores officer accounts on login.
type OfficerUpserter interface {
	UpsertOfficer(ctx context.Context, officer *models.Officer) error
}

// OfficerAuthHandler handles OIDC login for the officer console.
type OfficerAuthHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	store        OfficerUpserter
	cfg          *config.Config
}

// NewOfficerAuthHandler creates a new officer auth handler with OIDC configuration.
func NewOfficerAuthHandler(ctx context.Context, cfg *config.Config, store OfficerUpserter) (*OfficerAuthHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &OfficerAuthHandler{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID}),
		store:        store,
		cfg:          cfg,
	}, nil
}

// Login initiates the OIDC login flow.
func (h *OfficerAuthHandler) Login(c fiber.Ctx) error {
	state := generateState()

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	sess.Set("oauth_state", state)

	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback handles the OIDC callback after authentication.
func (h *OfficerAuthHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	savedState, _ := sess.Get("oauth_state").(string)
	if savedState == "" || savedState != c.Query("state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}
	sess.Delete("oauth_state")

	oauth2Token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "missing id_token")
	}

	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id_token")
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return err
	}

	// Some providers keep email and name out of the ID token
	if claims.Email == "" || claims.Name == "" {
		userInfo, err := h.provider.UserInfo(c.Context(), oauth2.StaticTokenSource(oauth2Token))
		if err != nil {
			log.Printf("Warning: Failed to fetch userinfo: %v", err)
		} else {
			if claims.Email == "" {
				claims.Email = userInfo.Email
			}
			if claims.Name == "" {
				var extra struct {
					Name string `json:"name"`
				}
				if err := userInfo.Claims(&extra); err == nil {
					claims.Name = extra.Name
				}
			}
		}
	}

	officer := &models.Officer{
		Sub:   claims.Sub,
		Email: claims.Email,
		Name:  claims.Name,
	}
	if err := h.store.UpsertOfficer(c.Context(), officer); err != nil {
		return err
	}

	// Fresh session id for the privileged session
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(middleware.OfficerSessionKey, officer.Sub)

	redirectURL := "/admin/messages"
	if saved, ok := sess.Get("redirect_after_login").(string); ok {
		redirectURL = validation.SafeRedirect(saved, redirectURL)
		sess.Delete("redirect_after_login")
	}

	return c.Redirect().To(redirectURL)
}

// Logout signs the officer out without touching any farmer state.
func (h *OfficerAuthHandler) Logout(c fiber.Ctx) error {
	if sess := session.FromContext(c); sess != nil {
		sess.Delete(middleware.OfficerSessionKey)
	}
	return c.Redirect().To("/")
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
