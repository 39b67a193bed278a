package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const (
	uploadField     = "image"
	multipartMemory = 1 << 20
)

type UploadHandler struct {
	uploads UploadService
	maxBody int64
	log     *zap.Logger
}

func NewUploadHandler(uploads UploadService, maxBody int64, log *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxBody: maxBody, log: log}
}

// UploadImage accepts a multipart form with the picture in the "image" field.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, h.log, http.StatusBadRequest, "image is too large")
			return
		}
		respondError(w, h.log, http.StatusBadRequest, "request must be multipart/form-data")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warn("failed to remove multipart temp files", zap.Error(err))
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		respondError(w, h.log, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	img, err := h.uploads.UploadImage(r.Context(), principalFrom(r.Context()), file, header.Filename)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondData(w, h.log, http.StatusCreated, img)
}
