package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

const (
	defaultAssistModel = "gpt-4o-mini"
	maxCandidates      = 10

	assistSystemPrompt = "You are an assistant that helps recommend Spotify songs/artists. " +
		"Always respond in strict JSON with a 'candidates' array, " +
		`where each element is {"artist": <name>, "track": <optional track name>}.`
)

// AssistService turns a natural language prompt into [models.Candidate] suggestions using an OpenAI-compatible chat completions endpoint.
type AssistService struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAssistService creates an assist client. A nil httpClient uses [http.DefaultClient].
func NewAssistService(cfg shared.AssistConfig, httpClient *http.Client) *AssistService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	model := cfg.Model
	if model == "" {
		model = defaultAssistModel
	}
	return &AssistService{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ResolvePrompt asks the model for candidates. Blank prompts yield no candidates without a request.
func (a *AssistService) ResolvePrompt(ctx context.Context, prompt string) ([]models.Candidate, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, nil
	}
	if a.apiKey == "" || a.baseURL == "" {
		return nil, fmt.Errorf("%w: assist api_key and base_url must be set", shared.ErrMissingCredentials)
	}

	payload, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: assistSystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: assist status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	if len(chat.Choices) == 0 {
		return nil, nil
	}

	return ParseCandidates(chat.Choices[0].Message.Content)
}

// ParseCandidates decodes a {"candidates": [...]} document.
//
// The document may itself arrive JSON-encoded as a string. Empty candidates are dropped and the list is capped at ten.
func ParseCandidates(content string) ([]models.Candidate, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var doc struct {
		Candidates []models.Candidate `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		var inner string
		if strErr := json.Unmarshal([]byte(content), &inner); strErr != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
		return ParseCandidates(inner)
	}

	out := make([]models.Candidate, 0, len(doc.Candidates))
	for _, c := range doc.Candidates {
		if c.Empty() {
			continue
		}
		out = append(out, models.Candidate{Artist: strings.TrimSpace(c.Artist), Track: strings.TrimSpace(c.Track)})
		if len(out) == maxCandidates {
			break
		}
	}
	return out, nil
}
