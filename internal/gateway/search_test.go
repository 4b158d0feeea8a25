package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-cli/internal/config"
	"github.com/sells-group/geo-cli/internal/model"
	"github.com/sells-group/geo-cli/pkg/openai"
	"github.com/sells-group/geo-cli/pkg/perplexity"
)

func TestOpenAISearcher(t *testing.T) {
	client := &mockOpenAIClient{}
	client.On("ChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "gpt-4-turbo-preview" && req.Prompt == "best crm software"
	})).Return(&openai.ChatCompletionResponse{Content: "HubSpot and Salesforce lead the market."}, nil)

	s := NewOpenAISearcher(client, config.OpenAIConfig{Model: "gpt-4-turbo-preview"}, NewLimiter(0))

	ans, err := s.Search(context.Background(), "best crm software")
	require.NoError(t, err)
	assert.Equal(t, "HubSpot and Salesforce lead the market.", ans.Text)
	assert.Empty(t, ans.Citations)
}

func TestOpenAISearcherError(t *testing.T) {
	client := &mockOpenAIClient{}
	client.On("ChatCompletion", mock.Anything, mock.Anything).
		Return(nil, errors.New("unexpected status 500"))

	s := NewOpenAISearcher(client, config.OpenAIConfig{Model: "gpt-4-turbo-preview"}, NewLimiter(0))

	_, err := s.Search(context.Background(), "best crm software")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatgpt search")
}

func TestOpenAISearcherSimulatedWithoutClient(t *testing.T) {
	s := NewOpenAISearcher(nil, config.OpenAIConfig{}, NewLimiter(0))

	ans, err := s.Search(context.Background(), "best crm software")
	require.NoError(t, err)
	assert.Contains(t, ans.Text, "HubSpot")
}

func TestPerplexitySearcherReturnsCitations(t *testing.T) {
	client := &mockPerplexityClient{}
	client.On("ChatCompletion", mock.Anything, mock.MatchedBy(func(req perplexity.ChatCompletionRequest) bool {
		return req.Model == "sonar" && len(req.Messages) == 2 && req.Messages[1].Content == "best crm software"
	})).Return(&perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{Message: perplexity.Message{Role: "assistant", Content: "Pipedrive is popular."}}},
		Citations: []string{
			"https://pipedrive.com",
			"https://hubspot.com",
		},
	}, nil)

	s := NewPerplexitySearcher(client, config.PerplexityConfig{Model: "sonar"}, NewLimiter(0))

	ans, err := s.Search(context.Background(), "best crm software")
	require.NoError(t, err)
	assert.Equal(t, "Pipedrive is popular.", ans.Text)
	assert.Len(t, ans.Citations, 2)
}

func TestPerplexitySearcherFallsBackOnAPIError(t *testing.T) {
	client := &mockPerplexityClient{}
	client.On("ChatCompletion", mock.Anything, mock.Anything).
		Return(nil, errors.New("unexpected status 429"))

	s := NewPerplexitySearcher(client, config.PerplexityConfig{Model: "sonar"}, NewLimiter(0))

	ans, err := s.Search(context.Background(), "best crm software")
	require.NoError(t, err)
	assert.Contains(t, ans.Text, "HubSpot CRM")
	assert.NotEmpty(t, ans.Citations)
}

func TestPerplexitySearcherCancelledContextIsError(t *testing.T) {
	client := &mockPerplexityClient{}
	client.On("ChatCompletion", mock.Anything, mock.Anything).
		Return(nil, context.Canceled)

	s := NewPerplexitySearcher(client, config.PerplexityConfig{Model: "sonar"}, NewLimiter(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, "best crm software")
	require.Error(t, err)
}

func TestSimulatedAnswerCatalogue(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantText  string
		citations int
	}{
		{
			name:      "known query case insensitive",
			query:     "Best AI Productivity Tools",
			wantText:  "Notion AI",
			citations: 3,
		},
		{
			name:      "crm query",
			query:     "best crm software",
			wantText:  "Salesforce",
			citations: 3,
		},
		{
			name:      "unknown query gets generic answer",
			query:     "best quantum toasters",
			wantText:  "best quantum toasters",
			citations: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := simulatedAnswer(tt.query)
			assert.Contains(t, ans.Text, tt.wantText)
			assert.Len(t, ans.Citations, tt.citations)
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := Registry{
		model.PlatformChatGPT: simulatedSearcher{platform: model.PlatformChatGPT},
	}

	s, err := reg.Lookup(model.PlatformChatGPT)
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = reg.Lookup(model.PlatformPerplexity)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no searcher registered")
}
