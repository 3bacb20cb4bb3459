package llmplan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// httpDoer is satisfied by *http.Client; narrowed so adapter tests can
// substitute a fake transport without a live endpoint.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// wrapAsGroupItem packages an adapter's raw reply text as the single
// "group" plan item the orchestrator's plan-to-task reorder matches
// against (spec.md §4.7).
func wrapAsGroupItem(text, provider string) PlanResponse {
	return PlanResponse{Items: []PlanItem{
		{Intent: text, Rationale: "group", Provider: provider},
	}}
}

// OpenAIResponsesAdapter calls the OpenAI Responses API. Enabled iff
// OPENAI_API_KEY is set.
type OpenAIResponsesAdapter struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient httpDoer
}

// NewOpenAIResponsesAdapter reads OPENAI_API_KEY and OPENAI_RESPONSES_MODEL
// once, at construction time, so the enabled/disabled decision for a run is
// fixed up front (global env reads are confined to adapter construction).
func NewOpenAIResponsesAdapter() *OpenAIResponsesAdapter {
	model := os.Getenv("OPENAI_RESPONSES_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIResponsesAdapter{
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		model:      model,
		endpoint:   "https://api.openai.com/v1/responses",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *OpenAIResponsesAdapter) Provider() string { return "openai-responses" }
func (a *OpenAIResponsesAdapter) Enabled() bool    { return a.apiKey != "" }

type openAIRequest struct {
	Model           string  `json:"model"`
	Input           string  `json:"input"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

type openAIResponse struct {
	OutputText string `json:"output_text"`
}

func (a *OpenAIResponsesAdapter) GeneratePlan(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	if !a.Enabled() {
		return PlanResponse{}, fmt.Errorf("openai-responses adapter not configured")
	}

	payload := openAIRequest{
		Model:           a.model,
		Input:           BuildPrompt(req),
		Temperature:     0.4,
		MaxOutputTokens: 500,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return PlanResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("openai call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return PlanResponse{}, fmt.Errorf("openai error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return PlanResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.OutputText == "" {
		return PlanResponse{}, fmt.Errorf("empty response")
	}

	return wrapAsGroupItem(parsed.OutputText, a.Provider()), nil
}

// BedrockConverseAdapter calls a Bedrock Converse-compatible endpoint.
// Enabled iff BEDROCK_CONVERSE_URL and BEDROCK_CONVERSE_MODEL are both set.
type BedrockConverseAdapter struct {
	url        string
	model      string
	authHeader string
	httpClient httpDoer
}

func NewBedrockConverseAdapter() *BedrockConverseAdapter {
	return &BedrockConverseAdapter{
		url:        os.Getenv("BEDROCK_CONVERSE_URL"),
		model:      os.Getenv("BEDROCK_CONVERSE_MODEL"),
		authHeader: os.Getenv("BEDROCK_CONVERSE_AUTH"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *BedrockConverseAdapter) Provider() string { return "bedrock-converse" }
func (a *BedrockConverseAdapter) Enabled() bool    { return a.url != "" && a.model != "" }

type bedrockRequest struct {
	ModelID   string `json:"modelId"`
	InputText string `json:"inputText"`
}

type bedrockResponse struct {
	OutputText string `json:"outputText"`
}

func (a *BedrockConverseAdapter) GeneratePlan(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	if !a.Enabled() {
		return PlanResponse{}, fmt.Errorf("bedrock-converse adapter not configured")
	}

	body, err := json.Marshal(bedrockRequest{ModelID: a.model, InputText: BuildPrompt(req)})
	if err != nil {
		return PlanResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return PlanResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.authHeader != "" {
		httpReq.Header.Set("Authorization", a.authHeader)
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("bedrock call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return PlanResponse{}, fmt.Errorf("bedrock error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed bedrockResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return PlanResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.OutputText == "" {
		return PlanResponse{}, fmt.Errorf("empty response")
	}

	return wrapAsGroupItem(parsed.OutputText, a.Provider()), nil
}

// OllamaAdapter calls a local/self-hosted Ollama generate endpoint.
// Enabled iff OLLAMA_HOST is set.
type OllamaAdapter struct {
	host       string
	model      string
	httpClient httpDoer
}

func NewOllamaAdapter() *OllamaAdapter {
	model := os.Getenv("OLLAMA_PLAN_MODEL")
	if model == "" {
		model = "llama3"
	}
	return &OllamaAdapter{
		host:       os.Getenv("OLLAMA_HOST"),
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *OllamaAdapter) Provider() string { return "ollama" }
func (a *OllamaAdapter) Enabled() bool    { return a.host != "" }

type ollamaRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (a *OllamaAdapter) GeneratePlan(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	if !a.Enabled() {
		return PlanResponse{}, fmt.Errorf("ollama adapter not configured")
	}

	body, err := json.Marshal(ollamaRequest{Model: a.model, Prompt: BuildPrompt(req), Temperature: 0.4, Stream: false})
	if err != nil {
		return PlanResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return PlanResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("ollama call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return PlanResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return PlanResponse{}, fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return PlanResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Response == "" {
		return PlanResponse{}, fmt.Errorf("empty response")
	}

	return wrapAsGroupItem(parsed.Response, a.Provider()), nil
}
