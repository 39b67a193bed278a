package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fjod/artverse/internal/repository"
	"github.com/fjod/artverse/internal/service"
	"go.uber.org/zap"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// ListResponse wraps a page of results.
type ListResponse struct {
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

func respondJSON(w http.ResponseWriter, log *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn("failed to encode response", zap.Error(err))
	}
}

func respondData(w http.ResponseWriter, log *zap.Logger, status int, data any) {
	respondJSON(w, log, status, Envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, log *zap.Logger, status int, message string) {
	respondJSON(w, log, status, Envelope{Success: true, Message: message})
}

func respondError(w http.ResponseWriter, log *zap.Logger, status int, message string) {
	respondJSON(w, log, status, Envelope{Success: false, Error: message})
}

func respondList(w http.ResponseWriter, log *zap.Logger, items any, page repository.Page, total int64) {
	pages := int64(0)
	if page.Limit > 0 {
		pages = (total + int64(page.Limit) - 1) / int64(page.Limit)
	}
	respondData(w, log, http.StatusOK, ListResponse{
		Items:      items,
		Pagination: Pagination{Page: page.Page, Limit: page.Limit, Total: total, Pages: pages},
	})
}

// handleServiceError converts service error kinds to HTTP status codes.
// Anything unexpected is logged and hidden behind a generic 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r)),
			zap.Error(err),
		)
		respondError(w, log, http.StatusInternalServerError, "internal server error")
		return
	}

	var status int
	switch svcErr.Kind {
	case service.KindInvalid:
		status = http.StatusBadRequest
	case service.KindUnauthorized:
		status = http.StatusUnauthorized
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindUnavailable:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}
	if svcErr.Err != nil {
		log.Warn("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	respondError(w, log, status, svcErr.Message)
}

// decodeJSON reads a single JSON object of at most maxBytes, rejecting
// unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("request body contains malformed JSON")
		case errors.As(err, &typeErr):
			if typeErr.Field != "" {
				return fmt.Errorf("%s has the wrong type", typeErr.Field)
			}
			return errors.New("request body contains a value of the wrong type")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body must not be larger than %d bytes", maxErr.Limit)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		default:
			return errors.New("invalid JSON body")
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// pageFromQuery reads ?page= and ?limit=, clamped to sane values.
func pageFromQuery(r *http.Request) repository.Page {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return repository.Page{Page: page, Limit: limit}
}

func floatQuery(r *http.Request, key string) (*float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &f, nil
}

func boolQuery(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
