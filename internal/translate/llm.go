package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/anderson0531/sceneflowai-audio/internal/logging"
)

// Config holds the chat-model connection settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LLMTranslator translates narration text with a chat model. One request
// per chunk keeps the prompt small enough for every provider.
type LLMTranslator struct {
	model model.BaseChatModel
}

func NewLLMTranslator(ctx context.Context, cfg Config) (*LLMTranslator, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create translation model: %w", err)
	}
	return &LLMTranslator{model: chatModel}, nil
}

// NewLLMTranslatorWithModel injects a prebuilt chat model.
func NewLLMTranslatorWithModel(m model.BaseChatModel) *LLMTranslator {
	return &LLMTranslator{model: m}
}

func (t *LLMTranslator) Translate(ctx context.Context, text string, languageCode string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	prompt := fmt.Sprintf(
		"You translate narration for spoken audio. Translate the user's text into %s. "+
			"Reply with only the translation, no explanations.", languageCode)

	resp, err := t.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(prompt),
		schema.UserMessage(text),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}

	translated := strings.TrimSpace(resp.Content)
	if translated == "" {
		return "", fmt.Errorf("%w: empty completion", ErrTranslation)
	}

	logging.Debugf("translated %d chars into %s", len(text), languageCode)
	return translated, nil
}
