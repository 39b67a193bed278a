// Package imagehost stores uploaded images with Cloudflare Images.
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	defaultAPIBase      = "https://api.cloudflare.com/client/v4"
	defaultDeliveryBase = "https://imagedelivery.net"
	DefaultVariant      = "public"
)

var ErrNotConfigured = errors.New("image host not configured")

// APIError is a non-2xx answer from the Images API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudflare images: %d %s", e.StatusCode, e.Message)
}

type Image struct {
	ID       string            `json:"id"`
	Filename string            `json:"filename"`
	Metadata map[string]string `json:"meta,omitempty"`
	Variants []string          `json:"variants"`
	Uploaded time.Time         `json:"uploaded"`
}

type apiResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

type Config struct {
	AccountID   string
	APIToken    string
	AccountHash string
	// Overridable for tests.
	APIBase      string
	DeliveryBase string
	HTTPClient   *http.Client
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[json.RawMessage]
}

func NewClient(cfg Config) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.DeliveryBase == "" {
		cfg.DeliveryBase = defaultDeliveryBase
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	breaker := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:    "cloudflare-images",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Rejections of a bad upload say nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
	})

	return &Client{cfg: cfg, http: httpClient, breaker: breaker}
}

// Upload sends the image as multipart form data and returns the stored image.
func (c *Client) Upload(ctx context.Context, r io.Reader, filename string, metadata map[string]string) (*Image, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if len(metadata) > 0 {
		meta, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		if err := w.WriteField("metadata", string(meta)); err != nil {
			return nil, fmt.Errorf("write metadata: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	payload := body.Bytes()
	raw, err := c.breaker.Execute(func() (json.RawMessage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.imagesURL(), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		return c.do(req)
	})
	if err != nil {
		return nil, err
	}

	var img Image
	if err := json.Unmarshal(raw, &img); err != nil {
		return nil, fmt.Errorf("decode upload result: %w", err)
	}
	return &img, nil
}

func (c *Client) Delete(ctx context.Context, imageID string) error {
	_, err := c.breaker.Execute(func() (json.RawMessage, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.imagesURL()+"/"+url.PathEscape(imageID), nil)
		if err != nil {
			return nil, err
		}
		return c.do(req)
	})
	return err
}

// URL is the public delivery address of an image variant.
func (c *Client) URL(imageID, variant string) string {
	if variant == "" {
		variant = DefaultVariant
	}
	return fmt.Sprintf("%s/%s/%s/%s", c.cfg.DeliveryBase, c.cfg.AccountHash, imageID, variant)
}

// ImageID extracts the image id from a delivery URL produced by URL.
func (c *Client) ImageID(deliveryURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", c.cfg.DeliveryBase, c.cfg.AccountHash)
	rest, ok := strings.CutPrefix(deliveryURL, prefix)
	if !ok {
		return "", false
	}
	id, _, _ := strings.Cut(rest, "/")
	return id, id != ""
}

func (c *Client) imagesURL() string {
	return fmt.Sprintf("%s/accounts/%s/images/v1", c.cfg.APIBase, c.cfg.AccountID)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudflare images request: %w", err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode cloudflare response: %w", err)
	}
	if resp.StatusCode >= 300 || !out.Success {
		msg := http.StatusText(resp.StatusCode)
		if len(out.Errors) > 0 {
			msg = out.Errors[0].Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return out.Result, nil
}
