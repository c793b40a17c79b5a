// Package gemini provides the LLM summary and chat collaborator.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/errors"
	"github.com/divyasajjan/landmark-finder/internal/logging"
)

// Message is one turn of a chat exchange.
type Message struct {
	Role string // "user" or "model"
	Text string
}

// Summarizer abstracts the LLM capabilities the pipeline needs, so the
// orchestrator can be tested without a live model.
type Summarizer interface {
	GenerateSummary(ctx context.Context, topic, facts string) (string, error)
	Chat(ctx context.Context, message string, history []Message) (string, error)
}

// Client implements Summarizer backed by the Gemini API.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a Gemini-backed summarizer from the given settings.
func NewClient(ctx context.Context, settings *conf.Settings) (*Client, error) {
	if settings.Gemini.APIKey == "" {
		return nil, errors.Newf("gemini API key not configured").
			Component("gemini").
			Category(errors.CategoryConfiguration).
			Build()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  settings.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.New(err).
			Component("gemini").
			Category(errors.CategoryLLM).
			Context("operation", "create_client").
			Build()
	}

	return &Client{
		client: client,
		model:  settings.Gemini.Model,
		logger: logging.ForService("gemini"),
	}, nil
}

// GenerateSummary asks the model for a short factual summary of a landmark,
// grounded on the supplied facts.
func (c *Client) GenerateSummary(ctx context.Context, topic, facts string) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize in 3-4 sentences why %s is famous.\n"+
			"Use the facts below. Be factual and concise.\n\nFacts:\n%s",
		strings.ReplaceAll(topic, "_", " "), facts)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", errors.New(err).
			Component("gemini").
			Category(errors.CategoryLLM).
			Context("operation", "generate_summary").
			Context("topic", topic).
			Build()
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.Newf("model returned an empty summary").
			Component("gemini").
			Category(errors.CategoryLLM).
			Context("topic", topic).
			Build()
	}

	c.logger.Debug("Generated summary", "topic", topic, "length", len(text))
	return text, nil
}

// Chat sends a message with prior conversation history and returns the
// model's reply.
func (c *Client) Chat(ctx context.Context, message string, history []Message) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for i := range history {
		var role genai.Role = genai.RoleUser
		if history[i].Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(history[i].Text, role))
	}

	chat, err := c.client.Chats.Create(ctx, c.model, nil, contents)
	if err != nil {
		return "", errors.New(err).
			Component("gemini").
			Category(errors.CategoryLLM).
			Context("operation", "create_chat").
			Build()
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", errors.New(err).
			Component("gemini").
			Category(errors.CategoryLLM).
			Context("operation", "chat_send").
			Build()
	}

	return strings.TrimSpace(resp.Text()), nil
}
