// Package ollama implements text generation and embedding using a local
// Ollama server over its HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/refdex"
)

// Defaults for a local Ollama install.
const (
	DefaultHost                = "http://localhost:11434"
	DefaultModel               = "llama3.1"
	DefaultEmbeddingModel      = "nomic-embed-text"
	DefaultEmbeddingDimensions = 768
	DefaultTimeout             = 120 * time.Second
)

func postJSON(ctx context.Context, client *http.Client, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return refdex.Errorf(refdex.EINTERNAL, "ollama: marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return refdex.Errorf(refdex.EINTERNAL, "ollama: create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return refdex.Errorf(refdex.EUNAVAILABLE, "ollama: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return refdex.Errorf(refdex.EINTERNAL, "ollama: status %d: %s", resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return refdex.Errorf(refdex.EINTERNAL, "ollama: decode response: %v", err)
	}

	return nil
}
