package coach

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/claude/fitcoach/internal/models"
)

// Defaults for the OpenAI provider.
const (
	DefaultOpenAIEndpoint     = "https://api.openai.com/v1"
	DefaultChatModel          = "gpt-4o-mini"
	DefaultTranscriptionModel = "whisper-1"
)

// LLMClient talks to an Azure OpenAI resource or the OpenAI API. It
// implements ChatModel and Transcriber. For Azure the models are
// deployment names.
type LLMClient struct {
	client             *azopenai.Client
	chatModel          string
	transcriptionModel string
}

// NewAzureClient creates a client for the Azure OpenAI resource at endpoint.
func NewAzureClient(endpoint, apiKey, chatDeployment, transcriptionDeployment string) (*LLMClient, error) {
	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure OpenAI client: %w", err)
	}
	return &LLMClient{
		client:             client,
		chatModel:          chatDeployment,
		transcriptionModel: transcriptionDeployment,
	}, nil
}

// NewOpenAIClient creates a client for the OpenAI API or a compatible
// server. Empty arguments take the defaults.
func NewOpenAIClient(endpoint, apiKey, chatModel, transcriptionModel string) (*LLMClient, error) {
	return newOpenAIClient(endpoint, apiKey, chatModel, transcriptionModel, nil)
}

func newOpenAIClient(endpoint, apiKey, chatModel, transcriptionModel string, opts *azopenai.ClientOptions) (*LLMClient, error) {
	if endpoint == "" {
		endpoint = DefaultOpenAIEndpoint
	}
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	if transcriptionModel == "" {
		transcriptionModel = DefaultTranscriptionModel
	}
	client, err := azopenai.NewClientForOpenAI(endpoint, azcore.NewKeyCredential(apiKey), opts)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	return &LLMClient{
		client:             client,
		chatModel:          chatModel,
		transcriptionModel: transcriptionModel,
	}, nil
}

// Complete sends the conversation to the chat model.
func (c *LLMClient) Complete(ctx context.Context, system string, history []models.Message) (string, error) {
	msgs := make([]azopenai.ChatRequestMessageClassification, 0, len(history)+1)
	msgs = append(msgs, &azopenai.ChatRequestSystemMessage{
		Content: azopenai.NewChatRequestSystemMessageContent(system),
	})
	for _, m := range history {
		if m.Role == models.RoleAssistant {
			msgs = append(msgs, &azopenai.ChatRequestAssistantMessage{
				Content: azopenai.NewChatRequestAssistantMessageContent(m.Content),
			})
			continue
		}
		msgs = append(msgs, &azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(m.Content),
		})
	}

	resp, err := c.client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(c.chatModel),
		Messages:       msgs,
	}, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil && resp.Choices[0].Message.Content != nil {
		return *resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("no completion received from %s", c.chatModel)
}

// Transcribe sends audio to the transcription model.
func (c *LLMClient) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	resp, err := c.client.GetAudioTranscription(ctx, azopenai.AudioTranscriptionOptions{
		File:           audio,
		Filename:       to.Ptr(filename),
		DeploymentName: to.Ptr(c.transcriptionModel),
		ResponseFormat: to.Ptr(azopenai.AudioTranscriptionFormatJSON),
	}, nil)
	if err != nil {
		return "", err
	}
	if resp.Text == nil {
		return "", fmt.Errorf("empty transcription from %s", c.transcriptionModel)
	}
	return *resp.Text, nil
}
