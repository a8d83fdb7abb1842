package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/refdex"
	"github.com/fwojciec/refdex/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("sends prompt and options", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/generate", r.URL.Path)

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "llama3.1", req["model"])
			assert.Equal(t, "What is a point cloud?", req["prompt"])
			assert.Equal(t, "Answer briefly.", req["system"])
			assert.Equal(t, false, req["stream"])

			opts, ok := req["options"].(map[string]any)
			require.True(t, ok)
			assert.InDelta(t, 0.5, opts["temperature"], 0.001)

			_ = json.NewEncoder(w).Encode(map[string]any{
				"response": "A set of data points in space.\n",
				"done":     true,
			})
		}))
		defer server.Close()

		generator := ollama.NewGenerator(server.URL, "")

		texts, err := generator.Generate(context.Background(), refdex.GenerateRequest{
			System:      "Answer briefly.",
			Prompt:      "What is a point cloud?",
			Temperature: 0.5,
		})

		require.NoError(t, err)
		require.Len(t, texts, 1)
		assert.Equal(t, "A set of data points in space.", texts[0])
	})

	t.Run("issues one request per candidate", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{"response": "candidate", "done": true})
		}))
		defer server.Close()

		generator := ollama.NewGenerator(server.URL, "")

		texts, err := generator.Generate(context.Background(), refdex.GenerateRequest{
			Prompt: "Write a question about PointXYZ.",
			N:      3,
		})

		require.NoError(t, err)
		assert.Len(t, texts, 3)
		assert.Equal(t, int64(3), calls.Load())
	})

	t.Run("rejects empty prompt", func(t *testing.T) {
		t.Parallel()

		generator := ollama.NewGenerator("http://localhost:1", "")

		_, err := generator.Generate(context.Background(), refdex.GenerateRequest{Prompt: "   "})

		require.Error(t, err)
		assert.Equal(t, refdex.EINVALID, refdex.ErrorCode(err))
	})

	t.Run("maps server errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
		}))
		defer server.Close()

		generator := ollama.NewGenerator(server.URL, "missing-model")

		_, err := generator.Generate(context.Background(), refdex.GenerateRequest{Prompt: "hello"})

		require.Error(t, err)
		assert.Equal(t, refdex.EINTERNAL, refdex.ErrorCode(err))
	})

	t.Run("unreachable server is unavailable", func(t *testing.T) {
		t.Parallel()

		generator := ollama.NewGenerator("http://127.0.0.1:1", "")

		_, err := generator.Generate(context.Background(), refdex.GenerateRequest{Prompt: "hello"})

		require.Error(t, err)
		assert.Equal(t, refdex.EUNAVAILABLE, refdex.ErrorCode(err))
	})
}
