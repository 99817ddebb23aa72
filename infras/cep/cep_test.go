package cep_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"pousada/config"
	"pousada/infras/cep"
	"pousada/infras/otel/mocks"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain digits",
			input:    "01310100",
			expected: "01310100",
		},
		{
			name:     "dashed format",
			input:    "01310-100",
			expected: "01310100",
		},
		{
			name:     "dotted and dashed format",
			input:    "01.310-100",
			expected: "01310100",
		},
		{
			name:     "too short",
			input:    "1310100",
			expected: "",
		},
		{
			name:     "too long",
			input:    "013101000",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "letters only",
			input:    "abcdefgh",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cep.Normalize(tt.input))
		})
	}
}

func newClient(t *testing.T, baseURL string) cep.Client {
	t.Helper()

	cfg := &config.Config{}
	cfg.External.CEP.BaseURL = baseURL
	cfg.External.CEP.TimeoutSeconds = 2

	return cep.New(cfg, mocks.NewOtel())
}

func TestClient_Lookup(t *testing.T) {
	t.Run("successful lookup", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/01310100", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"cep": "01310100",
				"state": "SP",
				"city": "Sao Paulo",
				"neighborhood": "Bela Vista",
				"street": "Avenida Paulista"
			}`))
		}))
		defer server.Close()

		client := newClient(t, server.URL)

		address := client.Lookup(context.Background(), "01310-100")

		assert.NotNil(t, address)
		assert.Equal(t, "Avenida Paulista", address.Street)
		assert.Equal(t, "Sao Paulo", address.City)
		assert.Equal(t, "SP", address.State)
	})

	t.Run("malformed cep skips the request", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		client := newClient(t, server.URL)

		address := client.Lookup(context.Background(), "123")

		assert.Nil(t, address)
		assert.False(t, called)
	})

	t.Run("not found returns nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newClient(t, server.URL)

		assert.Nil(t, client.Lookup(context.Background(), "99999999"))
	})

	t.Run("invalid payload returns nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := newClient(t, server.URL)

		assert.Nil(t, client.Lookup(context.Background(), "01310100"))
	})

	t.Run("unreachable server returns nil", func(t *testing.T) {
		client := newClient(t, "http://127.0.0.1:1")

		assert.Nil(t, client.Lookup(context.Background(), "01310100"))
	})
}
