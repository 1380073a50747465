package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequest(t *testing.T) {
	req, err := NewPageRequest(context.Background(), "https://doisporum.net/home", "TestAgent/1.0")
	assert.NoError(t, err)
	assert.Equal(t, "TestAgent/1.0", req.Header.Get("User-Agent"))
	assert.NotEmpty(t, req.Header.Get("Accept"))
	assert.NotEmpty(t, req.Header.Get("Accept-Language"))

	// Default identity when no agent is configured
	req, err = NewPageRequest(context.Background(), "https://doisporum.net/home", "")
	assert.NoError(t, err)
	assert.Contains(t, req.Header.Get("User-Agent"), "OfferScraper")

	_, err = NewPageRequest(context.Background(), "http://bad url", "")
	assert.Error(t, err)
}

func TestReadUTF8Body(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Promoção</body></html>"))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	assert.NoError(t, err)

	body, err := ReadUTF8Body(resp)
	assert.NoError(t, err)
	assert.Contains(t, body, "Promoção")
}

func TestReadUTF8BodyLatin1(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		// "Promoção" in ISO-8859-1 bytes
		w.Write([]byte{'P', 'r', 'o', 'm', 'o', 0xE7, 0xE3, 'o'})
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	assert.NoError(t, err)

	body, err := ReadUTF8Body(resp)
	assert.NoError(t, err)
	assert.Equal(t, "Promoção", body)
}
