package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a customer support manager. Extract the relevant information from the known context and answer the question thoroughly and politely.`

// Agent streams chat completions grounded on a retrieved context window.
type Agent struct {
	client *openai.Client
	model  string
}

func New(apiKey, model string) *Agent {
	return &Agent{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// StreamAnswer sends the grounded prompt and relays each response fragment
// through send as it arrives. No buffering beyond the fragment in flight;
// a send failure aborts the stream.
func (a *Agent) StreamAnswer(ctx context.Context, contextText, query string, send func(fragment string) error) error {
	req := openai.ChatCompletionRequest{
		Model:       a.model,
		MaxTokens:   1200,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Known context:\n%s\nQuestion: %s", contextText, query)},
		},
		Stream: true,
	}

	stream, err := a.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("create completion stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receive completion fragment: %w", err)
		}
		for _, choice := range resp.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := send(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
}
