// Package vision is the HTTP client for the CLIP inference sidecar. The
// sidecar owns the model, the title index and its own admission control; this
// client only ships bytes and parses candidates.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tenseii/pkg/models"
)

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type recognizeRequest struct {
	ImageB64 string `json:"image_b64"`
	TopK     int    `json:"top_k"`
}

type recognizeResponse struct {
	Candidates []struct {
		Title      string  `json:"title"`
		Confidence float64 `json:"confidence"`
	} `json:"candidates"`
}

// Recognize submits image bytes and returns the ranked candidates. Ordering is
// not trusted here; the pipeline re-sorts defensively.
func (c *Client) Recognize(ctx context.Context, imageBytes []byte, topK int) ([]models.AnimeCandidate, error) {
	payload, err := json.Marshal(recognizeRequest{
		ImageB64: base64.StdEncoding.EncodeToString(imageBytes),
		TopK:     topK,
	})
	if err != nil {
		return nil, fmt.Errorf("vision: encode request: %w", err)
	}

	body, err := c.post(ctx, "/v1/recognize", payload)
	if err != nil {
		return nil, err
	}

	var parsed recognizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("vision: decode response: %w", err)
	}

	out := make([]models.AnimeCandidate, 0, len(parsed.Candidates))
	for _, cand := range parsed.Candidates {
		out = append(out, models.AnimeCandidate{Title: cand.Title, Confidence: cand.Confidence})
	}
	return out, nil
}

type indexRequest struct {
	Titles []string `json:"titles"`
}

// BuildIndex pushes the catalog titles to the sidecar so it can (re)build its
// text-embedding index. Called once at startup, not per request.
func (c *Client) BuildIndex(ctx context.Context, titles []string) error {
	payload, err := json.Marshal(indexRequest{Titles: titles})
	if err != nil {
		return fmt.Errorf("vision: encode index request: %w", err)
	}
	if _, err := c.post(ctx, "/v1/index", payload); err != nil {
		return err
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("vision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision: status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
