package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPGenerator calls the image-generation service's JSON API.
type HTTPGenerator struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewHTTPGenerator(baseURL, apiKey string) *HTTPGenerator {
	// no client-level timeout: the caller owns the deadline through ctx
	return &HTTPGenerator{baseURL: baseURL, apiKey: apiKey, hc: &http.Client{}}
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	ImageCount  int    `json:"imageCount"`
	MimeType    string `json:"mimeType"`
	AspectRatio string `json:"aspectRatio"`
}

type generateResponse struct {
	Images []struct {
		BytesBase64 string `json:"bytesBase64"`
	} `json:"images"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := generateRequest{
		Prompt:      prompt,
		ImageCount:  1,
		MimeType:    "image/png",
		AspectRatio: "1:1",
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/images:generate", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", g.apiKey)

	resp, err := g.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(gr.Images) == 0 || gr.Images[0].BytesBase64 == "" {
		return nil, fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	img, err := base64.StdEncoding.DecodeString(gr.Images[0].BytesBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return img, nil
}
