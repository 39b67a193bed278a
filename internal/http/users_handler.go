package http

import (
	"net/http"

	"github.com/fjod/artverse/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	users   UserService
	maxBody int64
	log     *zap.Logger
}

func NewUserHandler(users UserService, maxBody int64, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, maxBody: maxBody, log: log}
}

type RoleRequestDTO struct {
	Role string `json:"role"`
}

func (h *UserHandler) ListArtists(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	artists, total, err := h.users.ListArtists(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, artists, page, total)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), principalFrom(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req service.ChangePasswordInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.ChangePassword(r.Context(), principalFrom(r.Context()), req); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, h.log, http.StatusOK, "password updated")
}

// ListUsers is the admin user directory, filterable by ?role= and ?search=.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	q := r.URL.Query()
	users, total, err := h.users.ListUsers(r.Context(), principalFrom(r.Context()), q.Get("role"), q.Get("search"), page)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, users, page, total)
}

func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequestDTO
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.SetRole(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, h.log, http.StatusOK, "user deleted")
}
