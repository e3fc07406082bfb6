// internal/auth/handlers.go
package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"taskhub/internal/httpx"
	"taskhub/internal/models"
	"taskhub/internal/repo"
)

// Service bundles what the auth endpoints need: the store, the token
// signer, and the role given to registrants that don't pick one.
type Service struct {
	Store       repo.Store
	Tokens      Tokens
	DefaultRole models.Role
}

type authResponse struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	AccessToken string      `json:"accessToken"`
}

func (s Service) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(s.Tokens.RefreshExpiry),
	})
}

// issueTokens mints both tokens, stores the refresh token on the user
// (rotating out any prior one), and sets the refresh cookie.
func (s Service) issueTokens(w http.ResponseWriter, r *http.Request, u models.User) (string, error) {
	access, err := s.Tokens.GenerateAccessToken(u.ID)
	if err != nil {
		return "", err
	}
	refresh, err := s.Tokens.GenerateRefreshToken(u.ID)
	if err != nil {
		return "", err
	}
	u.RefreshToken = refresh
	if err := s.Store.SaveUser(r.Context(), u); err != nil {
		return "", err
	}
	s.setRefreshCookie(w, refresh)
	return access, nil
}

// RegisterHandler creates a user.
// POST /api/auth/register { "username", "email", "password", "role"? }
func (s Service) RegisterHandler() http.HandlerFunc {
	type bodyT struct {
		Username string      `json:"username"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}
	return func(w http.ResponseWriter, req *http.Request) {
		var b bodyT
		if err := json.NewDecoder(req.Body).Decode(&b); err != nil {
			httpx.Message(w, http.StatusBadRequest, "bad json")
			return
		}
		b.Username = strings.TrimSpace(b.Username)
		b.Email = strings.ToLower(strings.TrimSpace(b.Email))
		if b.Username == "" || b.Email == "" || b.Password == "" {
			httpx.Message(w, http.StatusBadRequest, "username, email and password are required")
			return
		}
		role := b.Role
		if role == "" {
			role = s.DefaultRole
		}
		if !models.ValidRole(role) {
			httpx.Message(w, http.StatusBadRequest, "invalid role")
			return
		}
		exists, err := s.Store.UserExists(req.Context(), b.Email, b.Username)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		if exists {
			httpx.Message(w, http.StatusBadRequest, "user already exists with this email or username")
			return
		}
		phc, err := HashPassword(b.Password)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		u, err := s.Store.CreateUser(req.Context(), models.User{
			Username:     b.Username,
			Email:        b.Email,
			Role:         role,
			PasswordHash: phc,
		})
		if err != nil {
			httpx.Error(w, err)
			return
		}
		access, err := s.issueTokens(w, req, u)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, authResponse{
			ID: u.ID.String(), Username: u.Username, Email: u.Email, Role: u.Role, AccessToken: access,
		})
	}
}

// LoginHandler verifies credentials and rotates tokens.
// POST /api/auth/login { "email", "password" }
func (s Service) LoginHandler() http.HandlerFunc {
	type bodyT struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, req *http.Request) {
		var b bodyT
		if err := json.NewDecoder(req.Body).Decode(&b); err != nil {
			httpx.Message(w, http.StatusBadRequest, "bad json")
			return
		}
		u, err := s.Store.GetUserByEmail(req.Context(), strings.ToLower(strings.TrimSpace(b.Email)))
		if err != nil {
			// same message as a wrong password: login must not reveal
			// which of the two was wrong
			httpx.Message(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		ok, err := VerifyPassword(b.Password, u.PasswordHash)
		if err != nil || !ok {
			httpx.Message(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		access, err := s.issueTokens(w, req, u)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, authResponse{
			ID: u.ID.String(), Username: u.Username, Email: u.Email, Role: u.Role, AccessToken: access,
		})
	}
}

// RefreshHandler rotates the refresh token and mints a new access token.
// POST /api/auth/refresh-token (refresh token read from the cookie)
func (s Service) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		c, err := req.Cookie("refreshToken")
		if err != nil || c.Value == "" {
			httpx.Message(w, http.StatusUnauthorized, "refresh token not found")
			return
		}
		userID, ok := s.Tokens.VerifyRefreshToken(c.Value)
		if !ok {
			httpx.Message(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		u, err := s.Store.GetUserByID(req.Context(), userID)
		if err != nil || u.RefreshToken != c.Value {
			// rotation: a previously rotated-out token is rejected even
			// though its signature still verifies
			httpx.Message(w, http.StatusUnauthorized, "refresh token is not valid")
			return
		}
		access, err := s.issueTokens(w, req, u)
		if err != nil {
			httpx.Error(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"accessToken": access})
	}
}

// LogoutHandler clears the stored refresh token and the cookie.
// POST /api/auth/logout (authenticated)
func (s Service) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		u, ok := UserFromContext(req.Context())
		if !ok {
			httpx.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		u.RefreshToken = ""
		if err := s.Store.SaveUser(req.Context(), *u); err != nil {
			httpx.Error(w, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name: "refreshToken", Value: "", Path: "/", HttpOnly: true, MaxAge: -1,
		})
		httpx.Message(w, http.StatusOK, "logged out successfully")
	}
}

// MeHandler returns the authenticated user.
// GET /api/auth/me
func (s Service) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		u, ok := UserFromContext(req.Context())
		if !ok {
			httpx.Message(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		httpx.JSON(w, http.StatusOK, u.Public())
	}
}
