// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// solarAPIURL is the Upstage chat completions endpoint. Declared as a var
// so tests can substitute an httptest server.
var solarAPIURL = "https://api.upstage.ai/v1/chat/completions"

// defaultSolarModel is used when no model is configured.
const defaultSolarModel = "solar-pro"

// SolarJudge calls the Upstage Solar chat API to grade documents.
type SolarJudge struct {
	APIKey string
	Model  string
	Client *http.Client
}

// solarRequest is the request body for the chat completions API.
type solarRequest struct {
	Model       string         `json:"model"`
	Messages    []solarMessage `json:"messages"`
	Temperature float64        `json:"temperature"`
}

// solarMessage is a single message in the chat conversation.
type solarMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// solarResponse is the response body from the chat completions API.
type solarResponse struct {
	Choices []struct {
		Message solarMessage `json:"message"`
	} `json:"choices"`
}

// Configured reports whether an API key is available.
func (s *SolarJudge) Configured() bool {
	return s.APIKey != ""
}

// Judge sends the prompt to the Solar model and returns the raw completion text.
func (s *SolarJudge) Judge(ctx context.Context, prompt string) (string, error) {
	model := s.Model
	if model == "" {
		model = defaultSolarModel
	}

	reqBody := solarRequest{
		Model:       model,
		Messages:    []solarMessage{{Role: "user", Content: prompt}},
		Temperature: 0.1,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, solarAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Solar API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Solar API returned %d: %s", resp.StatusCode, string(body))
	}

	var sResp solarResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return "", fmt.Errorf("decoding Solar response: %w", err)
	}

	if len(sResp.Choices) == 0 {
		return "", fmt.Errorf("Solar API returned no choices")
	}

	return sResp.Choices[0].Message.Content, nil
}
