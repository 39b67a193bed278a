package http

import (
	"net/http"

	"github.com/fjod/artverse/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ArtworkHandler struct {
	artworks ArtworkService
	maxBody  int64
	log      *zap.Logger
}

func NewArtworkHandler(artworks ArtworkService, maxBody int64, log *zap.Logger) *ArtworkHandler {
	return &ArtworkHandler{artworks: artworks, maxBody: maxBody, log: log}
}

// List is the public catalogue: ?category, ?artist, ?search, ?min_price,
// ?max_price, ?sort (newest, oldest, price_asc, price_desc, popular).
func (h *ArtworkHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.ArtworkQuery{
		Category: q.Get("category"),
		ArtistID: q.Get("artist"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Page:     pageFromQuery(r),
	}
	var err error
	if query.MinPrice, err = floatQuery(r, "min_price"); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	if query.MaxPrice, err = floatQuery(r, "max_price"); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	artworks, total, err := h.artworks.List(r.Context(), query)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, artworks, query.Page, total)
}

func (h *ArtworkHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	artworks, total, err := h.artworks.ListMine(r.Context(), principalFrom(r.Context()), r.URL.Query().Get("status"), page)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, artworks, page, total)
}

func (h *ArtworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	artwork, err := h.artworks.Get(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, artwork)
}

func (h *ArtworkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.ArtworkInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	artwork, err := h.artworks.Create(r.Context(), principalFrom(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusCreated, artwork)
}

func (h *ArtworkHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.ArtworkUpdate
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	artwork, err := h.artworks.Update(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, artwork)
}

func (h *ArtworkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.artworks.Delete(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondMessage(w, h.log, http.StatusOK, "artwork deleted")
}

// Review approves or rejects a pending artwork.
func (h *ArtworkHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req service.ReviewInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	artwork, err := h.artworks.Review(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, artwork)
}
