package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/doodlechef/doodlechef/internal/generation"
)

// moderationModel classifies both text and image inputs.
const moderationModel = "omni-moderation-latest"

type moderationRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type moderationImageInput struct {
	Type     string             `json:"type"`
	ImageURL moderationImageURL `json:"image_url"`
}

type moderationImageURL struct {
	URL string `json:"url"`
}

type moderationResponse struct {
	Results []json.RawMessage `json:"results"`
}

type moderationVerdict struct {
	Flagged bool `json:"flagged"`
}

// ModerateText classifies a text prompt.
func (c *Client) ModerateText(ctx context.Context, input string) (*generation.ModerationResult, error) {
	return c.moderate(ctx, input)
}

// ModerateImage classifies a base64-encoded PNG image.
func (c *Client) ModerateImage(ctx context.Context, imageBase64 string) (*generation.ModerationResult, error) {
	return c.moderate(ctx, []moderationImageInput{
		{
			Type: "image_url",
			ImageURL: moderationImageURL{
				URL: "data:image/png;base64," + imageBase64,
			},
		},
	})
}

func (c *Client) moderate(ctx context.Context, input any) (*generation.ModerationResult, error) {
	body, err := json.Marshal(moderationRequest{Model: moderationModel, Input: input})
	if err != nil {
		return nil, fmt.Errorf("encode moderation request: %w", err)
	}

	req, err := c.newRequest(ctx, "/moderations", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	var parsed moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode moderation response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("moderation response contains no results")
	}

	raw := parsed.Results[0]
	var verdict moderationVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, fmt.Errorf("decode moderation verdict: %w", err)
	}

	return &generation.ModerationResult{
		Flagged: verdict.Flagged,
		Raw:     raw,
	}, nil
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error.Message
}
