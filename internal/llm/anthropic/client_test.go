package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilsonLimSet/CoffeeChatAI/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", "claude-3-haiku-20240307")
	require.NoError(t, err)
	client.apiURL = srv.URL
	return client
}

func collect(t *testing.T, s llm.Stream) []string {
	t.Helper()
	defer s.Close()
	var out []string
	for {
		fragment, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, fragment)
	}
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("", "claude-3-haiku-20240307")
	assert.Error(t, err)

	_, err = NewClient("key", "")
	assert.Error(t, err)
}

func TestStreamCompletionDecodesDeltas(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-haiku-20240307", req.Model)
		assert.Equal(t, 1024, req.MaxTokens)
		assert.True(t, req.Stream)

		_, _ = w.Write([]byte(
			"event: message_start\n" +
				"data: {\"type\":\"message_start\"}\n\n" +
				"event: content_block_delta\n" +
				"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"How \"}}\n\n" +
				"event: content_block_delta\n" +
				"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"did you start?\"}}\n\n" +
				"event: message_stop\n" +
				"data: {\"type\":\"message_stop\"}\n\n"))
	})

	stream, err := client.StreamCompletion(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, []string{"How ", "did you start?"}, collect(t, stream))
}

func TestStreamCompletionProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := client.StreamCompletion(context.Background(), "prompt")
	var provider *llm.ProviderError
	require.ErrorAs(t, err, &provider)
	assert.Equal(t, "anthropic", provider.Provider)
	assert.True(t, provider.AuthFailure())
}

func TestStreamCompletionInBandError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(
			"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"partial\"}}\n\n" +
				"data: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n"))
	})

	stream, err := client.StreamCompletion(context.Background(), "prompt")
	require.NoError(t, err)
	defer stream.Close()

	fragment, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", fragment)

	_, err = stream.Recv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Overloaded")
}

func TestStreamCompletionIgnoresBookkeepingEvents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(
			"data: {\"type\":\"message_start\"}\n\n" +
				"data: {\"type\":\"content_block_start\"}\n\n" +
				"data: {\"type\":\"ping\"}\n\n" +
				"data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"only\"}}\n\n" +
				"data: {\"type\":\"content_block_stop\"}\n\n" +
				"data: {\"type\":\"message_stop\"}\n\n"))
	})

	stream, err := client.StreamCompletion(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, collect(t, stream))
}
