package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"blastradius/internal/config"
	"blastradius/internal/errors"
	"blastradius/internal/logging"
)

const systemPrompt = `You convert a developer's change description into a JSON object:
{"changeType": "add|modify|delete|refactor|unknown",
 "symbolHints": [..], "fileHints": [..],
 "affectsPublicApi": true|false, "summary": "..."}
symbolHints and fileHints MUST be verbatim names taken from the provided
grounding lists. Never invent names. Respond with the JSON object only.`

// OpenAIOracle calls an OpenAI-compatible chat endpoint to produce intent
// descriptors
type OpenAIOracle struct {
	client *openai.Client
	model  string
	logger *logging.Logger
}

// NewOpenAIOracle builds the oracle from configuration. The API key comes
// from the configured environment variable; the base URL override supports
// local OpenAI-compatible servers.
func NewOpenAIOracle(cfg config.OracleConfig, logger *logging.Logger) (*OpenAIOracle, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, errors.New(errors.OracleFailed,
			fmt.Sprintf("missing API key: set %s", cfg.APIKeyEnv))
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIOracle{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// rawDescriptor tolerates loosely typed oracle output; hints are filtered
// to strings afterwards
type rawDescriptor struct {
	ChangeType       string        `json:"changeType"`
	SymbolHints      []interface{} `json:"symbolHints"`
	FileHints        []interface{} `json:"fileHints"`
	AffectsPublicAPI bool          `json:"affectsPublicApi"`
	Summary          string        `json:"summary"`
}

// Describe implements Oracle. Any failure surfaces as an IntentParseError;
// no analysis runs after one.
func (o *OpenAIOracle) Describe(ctx context.Context, prompt string, grounding *Grounding) (*Descriptor, error) {
	groundingJSON, err := json.Marshal(grounding)
	if err != nil {
		return nil, &errors.IntentParseError{Prompt: prompt, Reason: err.Error()}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Grounding:\n" + string(groundingJSON) + "\n\nChange description:\n" + prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		reason := err.Error()
		if ctx.Err() != nil {
			reason = "cancelled"
		}
		o.logger.Warn("oracle call failed", map[string]interface{}{"reason": reason})
		return nil, &errors.IntentParseError{Prompt: prompt, Reason: reason}
	}
	if len(resp.Choices) == 0 {
		return nil, &errors.IntentParseError{Prompt: prompt, Reason: "oracle returned no choices"}
	}

	return ParseDescriptor(prompt, resp.Choices[0].Message.Content)
}

// ParseDescriptor decodes the oracle's JSON payload into a Descriptor,
// filtering non-string hints and normalizing the change type
func ParseDescriptor(prompt, payload string) (*Descriptor, error) {
	payload = strings.TrimSpace(payload)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")

	var raw rawDescriptor
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, &errors.IntentParseError{Prompt: prompt, Reason: "unparseable descriptor: " + err.Error()}
	}

	desc := &Descriptor{
		Prompt:           prompt,
		ChangeType:       normalizeChangeType(raw.ChangeType),
		SymbolHints:      FilterHints(raw.SymbolHints),
		FileHints:        FilterHints(raw.FileHints),
		AffectsPublicAPI: raw.AffectsPublicAPI,
		Summary:          raw.Summary,
	}
	return desc, nil
}

func normalizeChangeType(s string) ChangeType {
	switch ChangeType(strings.ToLower(strings.TrimSpace(s))) {
	case ChangeAdd:
		return ChangeAdd
	case ChangeModify:
		return ChangeModify
	case ChangeDelete:
		return ChangeDelete
	case ChangeRefactor:
		return ChangeRefactor
	default:
		return ChangeUnknown
	}
}
