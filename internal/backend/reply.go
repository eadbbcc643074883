package backend

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyReply is returned when the model produced no choices.
var ErrEmptyReply = errors.New("empty model reply")

// EchoReplier answers with the message itself. It is used when no model is configured.
type EchoReplier struct{}

func (EchoReplier) Reply(_ context.Context, bot *Bot, message string) (string, error) {
	return "**" + bot.Name + "** heard you:\n\n> " + strings.ReplaceAll(message, "\n", "\n> "), nil
}

// OpenAIReplier answers with a chat completion.
type OpenAIReplier struct {
	client *openai.Client
	model  string
}

// NewOpenAIReplier creates a replier for apiKey. An empty model uses gpt-4o-mini.
func NewOpenAIReplier(apiKey, model string) *OpenAIReplier {
	return NewOpenAIReplierWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIReplierWithConfig creates a replier from a full client config.
func NewOpenAIReplierWithConfig(cfg openai.ClientConfig, model string) *OpenAIReplier {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIReplier{client: openai.NewClientWithConfig(cfg), model: model}
}

func (r *OpenAIReplier) Reply(ctx context.Context, bot *Bot, message string) (string, error) {
	prompt := bot.SystemPrompt
	if prompt == "" {
		prompt = "You are " + bot.Name + ", a helpful website assistant. Answer briefly in markdown."
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
