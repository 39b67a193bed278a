package imagehost

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		AccountID:    "acc",
		APIToken:     "tok",
		AccountHash:  "hash",
		APIBase:      srv.URL,
		DeliveryBase: "https://imagedelivery.net",
	})
}

func TestUpload_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/accounts/acc/images/v1", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "pixels", string(data))
		assert.Equal(t, "sunset.png", header.Filename)

		var meta map[string]string
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("metadata")), &meta))
		assert.Equal(t, "u1", meta["user_id"])

		_, _ = w.Write([]byte(`{"success":true,"result":{"id":"img-1","filename":"sunset.png","variants":["https://imagedelivery.net/hash/img-1/public"]}}`))
	})

	img, err := c.Upload(context.Background(), strings.NewReader("pixels"), "sunset.png", map[string]string{"user_id": "u1"})
	require.NoError(t, err)
	assert.Equal(t, "img-1", img.ID)
	assert.Len(t, img.Variants, 1)
}

func TestUpload_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"errors":[{"code":5400,"message":"Bad request: image too large"}]}`))
	})

	_, err := c.Upload(context.Background(), strings.NewReader("x"), "a.png", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "image too large")
}

func TestDelete(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true,"result":{}}`))
	})

	require.NoError(t, c.Delete(context.Background(), "img-9"))
	assert.Equal(t, "/accounts/acc/images/v1/img-9", path)
}

func TestBreaker_OpensAfterServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		err := c.Delete(context.Background(), "img")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
	}

	err := c.Delete(context.Background(), "img")
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(5), calls.Load())
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 7; i++ {
		assert.Error(t, c.Delete(context.Background(), "missing"))
	}
	assert.Equal(t, int32(7), calls.Load())
}

func TestURLAndImageID(t *testing.T) {
	c := NewClient(Config{AccountHash: "hash"})

	u := c.URL("img-3", "")
	assert.Equal(t, "https://imagedelivery.net/hash/img-3/public", u)

	id, ok := c.ImageID(u)
	assert.True(t, ok)
	assert.Equal(t, "img-3", id)

	_, ok = c.ImageID("https://example.com/pic.png")
	assert.False(t, ok)
}
