// Package assistant implements the conversation engine: it routes each user
// message to either the retrieval-augmented answering path or the booking
// slot-filling flow, keeps per-session history, and talks to the configured
// chat model.
package assistant

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/history"
)

// Default chat models per backend.
const (
	defaultOllamaChatModel = "llama3.2"
	defaultOpenAIChatModel = "gpt-4o-mini"
)

// ChatModel generates a reply given a system prompt, prior conversation
// turns, and the current user message.
type ChatModel interface {
	Complete(ctx context.Context, system string, msgs []history.Message, user string) (string, error)
}

// OpenAIChatModel implements ChatModel over any OpenAI-compatible chat
// completions endpoint. Ollama exposes one at /v1, so a single client type
// covers all three backends.
type OpenAIChatModel struct {
	client *openai.Client
	model  string
}

// NewChatModelFromEnv constructs a ChatModel from MODEL_PROVIDER and the
// per-backend env vars. Defaults to a local Ollama instance.
func NewChatModelFromEnv() (ChatModel, error) {
	provider := getEnvOrDefault("MODEL_PROVIDER", "ollama")

	switch provider {
	case "ollama":
		host := getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		cfg := openai.DefaultConfig("ollama") // Ollama ignores the key but the SDK requires one
		cfg.BaseURL = strings.TrimSuffix(host, "/") + "/v1"
		return &OpenAIChatModel{
			client: openai.NewClientWithConfig(cfg),
			model:  getEnvOrDefault("OLLAMA_MODEL", defaultOllamaChatModel),
		}, nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("assistant: openai requires OPENAI_API_KEY")
		}
		return &OpenAIChatModel{
			client: openai.NewClient(apiKey),
			model:  getEnvOrDefault("OPENAI_MODEL", defaultOpenAIChatModel),
		}, nil

	case "azure":
		apiKey := os.Getenv("AZURE_OPENAI_API_KEY")
		endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
		deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT")
		if apiKey == "" || endpoint == "" || deployment == "" {
			return nil, fmt.Errorf("assistant: azure requires AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT, and AZURE_OPENAI_DEPLOYMENT")
		}
		cfg := openai.DefaultAzureConfig(apiKey, endpoint)
		return &OpenAIChatModel{
			client: openai.NewClientWithConfig(cfg),
			model:  deployment,
		}, nil

	default:
		return nil, fmt.Errorf("assistant: unknown provider %q — valid values: ollama, openai, azure", provider)
	}
}

// Complete sends the conversation to the chat completions endpoint and
// returns the model's reply.
func (m *OpenAIChatModel) Complete(ctx context.Context, system string, msgs []history.Message, user string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(msgs)+2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range msgs {
		role := openai.ChatMessageRoleUser
		if msg.Role == history.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    m.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("assistant: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("assistant: chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
