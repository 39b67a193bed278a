package http

import (
	"net/http"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/service"
	"go.uber.org/zap"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth    AuthService
	cookie  CookieConfig
	maxBody int64
	log     *zap.Logger
}

func NewAuthHandler(auth AuthService, cookie CookieConfig, maxBody int64, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie, maxBody: maxBody, log: log}
}

type SessionResponse struct {
	User      *domain.User `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.auth.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	h.setCookie(w, sess.Token, sess.ExpiresAt)
	respondData(w, h.log, http.StatusCreated, SessionResponse{User: sess.User, ExpiresAt: sess.ExpiresAt})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.auth.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	h.setCookie(w, sess.Token, sess.ExpiresAt)
	respondData(w, h.log, http.StatusOK, SessionResponse{User: sess.User, ExpiresAt: sess.ExpiresAt})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	respondMessage(w, h.log, http.StatusOK, "logged out")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), principalFrom(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, user)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
