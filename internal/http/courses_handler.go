package http

import (
	"net/http"

	"github.com/fjod/artverse/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CourseHandler struct {
	courses CourseService
	maxBody int64
	log     *zap.Logger
}

func NewCourseHandler(courses CourseService, maxBody int64, log *zap.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, maxBody: maxBody, log: log}
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.CourseQuery{
		Category:     q.Get("category"),
		Level:        q.Get("level"),
		InstructorID: q.Get("instructor"),
		Search:       q.Get("search"),
		Sort:         q.Get("sort"),
		Page:         pageFromQuery(r),
	}

	courses, total, err := h.courses.List(r.Context(), query)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, courses, query.Page, total)
}

func (h *CourseHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	courses, total, err := h.courses.ListMine(r.Context(), principalFrom(r.Context()), r.URL.Query().Get("status"), page)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, courses, page, total)
}

func (h *CourseHandler) ListEnrolled(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	courses, total, err := h.courses.ListEnrolled(r.Context(), principalFrom(r.Context()), page)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondList(w, h.log, courses, page, total)
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.Get(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, course)
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CourseInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.courses.Create(r.Context(), principalFrom(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusCreated, course)
}

func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.CourseUpdate
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.courses.Update(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, course)
}

// Delete removes a course, or archives it when students are enrolled.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	archived, err := h.courses.Delete(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	if archived {
		respondMessage(w, h.log, http.StatusOK, "course has enrolled students and was archived")
		return
	}
	respondMessage(w, h.log, http.StatusOK, "course deleted")
}

func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	course, err := h.courses.Enroll(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, course)
}

func (h *CourseHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req service.ReviewInput
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		respondError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	course, err := h.courses.Review(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusOK, course)
}
