package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fjod/artverse/internal/imagehost"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ImageHost stores images and serves them from public URLs.
type ImageHost interface {
	Upload(ctx context.Context, r io.Reader, filename string, metadata map[string]string) (*imagehost.Image, error)
	Delete(ctx context.Context, imageID string) error
	URL(imageID, variant string) string
	ImageID(url string) (string, bool)
}

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type UploadedImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type UploadService struct {
	host ImageHost
	log  *zap.Logger
}

// NewUploadService accepts a nil host, in which case uploads are reported as
// unavailable.
func NewUploadService(host ImageHost, log *zap.Logger) *UploadService {
	return &UploadService{host: host, log: log}
}

// UploadImage checks that r holds a supported image and forwards it to the
// image host.
func (s *UploadService) UploadImage(ctx context.Context, p Principal, r io.Reader, filename string) (*UploadedImage, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := allowedImageTypes[ext]
	if !ok {
		return nil, invalid("invalid file type, allowed: jpg, jpeg, png, gif, webp")
	}

	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, invalid("could not read uploaded file")
	}
	if len(head) == 0 {
		return nil, invalid("uploaded file is empty")
	}
	if got := http.DetectContentType(head); got != want && !(want == "image/webp" && got == "application/octet-stream") {
		return nil, invalid("file content does not match its %s extension", ext)
	}

	if s.host == nil {
		return nil, &Error{Kind: KindUnavailable, Message: "image uploads are not configured"}
	}

	name := uuid.NewString() + ext
	img, err := s.host.Upload(ctx, br, name, map[string]string{
		"user_id":  p.UserID.Hex(),
		"original": filepath.Base(filename),
	})
	if err != nil {
		var apiErr *imagehost.APIError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, &Error{Kind: KindUnavailable, Message: "image service is temporarily unavailable", Err: err}
		case errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError:
			return nil, &Error{Kind: KindInvalid, Message: "image was rejected: " + apiErr.Message, Err: err}
		}
		s.log.Error("image upload failed", zap.Error(err))
		return nil, err
	}
	return &UploadedImage{ID: img.ID, URL: s.host.URL(img.ID, imagehost.DefaultVariant)}, nil
}
