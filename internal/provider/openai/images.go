package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/doodlechef/doodlechef/internal/generation"
)

type imageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Quality string `json:"quality,omitempty"`
	Size    string `json:"size,omitempty"`
	N       int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate produces one image for the prompt and returns its base64 payload.
func (c *Client) Generate(ctx context.Context, promptText string, opts generation.ImageOptions) (string, error) {
	body, err := json.Marshal(imageRequest{
		Model:   opts.Model,
		Prompt:  promptText,
		Quality: opts.Quality,
		Size:    opts.Size,
		N:       1,
	})
	if err != nil {
		return "", fmt.Errorf("encode image request: %w", err)
	}

	req, err := c.newRequest(ctx, "/images/generations", body)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	var parsed imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		c.logger.Error().Str("model", opts.Model).Msg("image response contains no payload")
		return "", fmt.Errorf("image response contains no payload")
	}

	return parsed.Data[0].B64JSON, nil
}
