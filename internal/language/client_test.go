package language

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDetectLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/detect", r.URL.Path)
		require.Equal(t, "k1", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"data":{"detections":[[{"language":"es","confidence":0.98}]]}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k1")
	lang, err := client.DetectLanguage(context.Background(), "hola")

	require.NoError(t, err)
	assert.Equal(t, "es", lang)
}

func TestClientDetectLanguageEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"detections":[]}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k1")
	_, err := client.DetectLanguage(context.Background(), "hola")
	assert.Error(t, err)
}

func TestClientTranslateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/", r.URL.Path)
		fmt.Fprint(w, `{"data":{"translations":[{"translatedText":"buenos días"}]}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k1")
	translated, err := client.TranslateText(context.Background(), "good morning", "es")

	require.NoError(t, err)
	assert.Equal(t, "buenos días", translated)
}

func TestClientTranslateTextUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k1")
	_, err := client.TranslateText(context.Background(), "good morning", "es")
	assert.Error(t, err)
}
