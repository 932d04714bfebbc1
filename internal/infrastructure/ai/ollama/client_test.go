package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServer(t *testing.T, done bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json", req.Format)
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(ChatResponse{
			Model:   req.Model,
			Message: ChatMessage{Role: "assistant", Content: `{"reasoning":"ok"}`},
			Done:    done,
		})
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:3b"},{"name":"phi3:latest"}]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Generate(t *testing.T) {
	server := newServer(t, true)
	client := NewClient(config.OllamaConfig{BaseURL: server.URL}, time.Second, zap.NewNop())

	out, err := client.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"reasoning":"ok"}`, out)
}

func TestClient_GenerateIncomplete(t *testing.T) {
	server := newServer(t, false)
	client := NewClient(config.OllamaConfig{BaseURL: server.URL}, time.Second, zap.NewNop())

	_, err := client.Generate(context.Background(), "prompt")

	assert.EqualError(t, err, "incomplete response from Ollama")
}

func TestClient_HealthCheck(t *testing.T) {
	server := newServer(t, true)

	tests := []struct {
		model   string
		wantErr bool
	}{
		{"llama3.2:3b", false},
		{"phi3", false},
		{"mistral", true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			client := NewClient(config.OllamaConfig{BaseURL: server.URL, Model: tt.model}, time.Second, zap.NewNop())

			err := client.HealthCheck(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
