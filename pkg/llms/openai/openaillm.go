package openai

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/MichaelAnckaert/go-agents/pkg/llms"
)

var (
	ErrEmptyResponse          = errors.New("openai: no response")
	ErrMissingToken           = errors.New("openai: missing API key, set it in the OPENAI_API_KEY environment variable")
	ErrUnsupportedMessageType = errors.Mark(errors.New("openai: unsupported message type"), llms.ErrUnexpectedRole)
	ErrInvalidContentType     = errors.New("openai: invalid content type")
)

type LLM struct {
	Client  *openai.Client
	Options *Options
}

var _ llms.Model = (*LLM)(nil)

// New creates a new OpenAI LLM client using the official OpenAI SDK.
//
// The same client works against any OpenAI-compatible endpoint, such as
// OpenRouter, by pointing WithBaseURL at the compatible server.
//
// Required configuration:
//   - API token (via WithToken option or OPENAI_API_KEY env var)
//   - Model (via WithModel option)
func New(opts ...Option) (*LLM, error) {
	options := applyOptions(opts...)

	if len(options.Token) == 0 {
		return nil, ErrMissingToken
	}
	if options.Model == "" {
		return nil, errors.New("openai: model is required")
	}

	sdkOpts := []option.RequestOption{
		option.WithAPIKey(options.Token),
		option.WithMaxRetries(2),
	}
	if options.BaseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(options.BaseURL))
	}
	if options.HTTPClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(options.HTTPClient))
	}
	if options.Organization != "" {
		sdkOpts = append(sdkOpts, option.WithOrganization(options.Organization))
	}

	client := openai.NewClient(sdkOpts...)

	return &LLM{
		Client:  &client,
		Options: options,
	}, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.Options.Model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOpenAI
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model: o.Options.Model,
	}
	for _, opt := range options {
		opt(&opts)
	}

	chatMsgs, err := ProcessMessages(messages)
	if err != nil {
		return nil, errors.Wrap(err, "openai: failed to process messages")
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(opts.Model),
		Messages: chatMsgs,
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(opts.TopP)
	}
	if opts.Seed > 0 {
		params.Seed = openai.Int(int64(opts.Seed))
	}
	if len(opts.StopWords) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: opts.StopWords,
		}
	}

	tools, err := ToTools(opts.Tools)
	if err != nil {
		return nil, errors.Wrap(err, "openai: failed to convert tools")
	}
	if len(tools) > 0 {
		params.Tools = tools
	}

	result, err := o.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "openai: failed to create chat completion")
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"InputTokens":  result.Usage.PromptTokens,
				"OutputTokens": result.Usage.CompletionTokens,
				"TotalTokens":  result.Usage.TotalTokens,
				"ID":           result.ID,
				"Index":        i,
			},
		}
		for _, tc := range c.Message.ToolCalls {
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		choices[i] = choice
	}

	return &llms.ContentResponse{Choices: choices}, nil
}

// ProcessMessages converts generic messages to OpenAI SDK message parameters.
//
// System, human and tool messages map to their chat-completions roles.
// AI messages may carry tool calls, which are sent on the assistant message
// so that subsequent tool responses can refer to them by ID.
func ProcessMessages(messages []llms.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	chatMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		if len(msg.Parts) == 0 {
			continue
		}
		switch msg.Role {
		case llms.RoleSystem:
			chatMsgs = append(chatMsgs, openai.SystemMessage(msg.GetContent()))
		case llms.RoleHuman:
			chatMsgs = append(chatMsgs, openai.UserMessage(msg.GetContent()))
		case llms.RoleAI:
			chatMsg, err := HandleAIMessage(msg)
			if err != nil {
				return nil, err
			}
			chatMsgs = append(chatMsgs, chatMsg)
		case llms.RoleTool:
			for _, part := range msg.Parts {
				resp, ok := part.(llms.ToolCallResponse)
				if !ok {
					return nil, errors.WithMessagef(ErrInvalidContentType, "openai: for tool message part type: %T", part)
				}
				chatMsgs = append(chatMsgs, openai.ToolMessage(resp.Content, resp.ToolCallID))
			}
		default:
			return nil, errors.WithMessagef(ErrUnsupportedMessageType, "openai: %v", msg.Role)
		}
	}
	return chatMsgs, nil
}

// HandleAIMessage converts an assistant message, including any tool calls it
// carries, to the OpenAI assistant message format.
func HandleAIMessage(msg llms.Message) (openai.ChatCompletionMessageParamUnion, error) {
	assistant := openai.ChatCompletionAssistantMessageParam{}

	for _, part := range msg.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			assistant.Content.OfString = openai.String(p.Text)
		case llms.ToolCall:
			if p.FunctionCall == nil {
				return openai.ChatCompletionMessageParamUnion{}, errors.New("openai: tool call without function call")
			}
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
					ID: p.ID,
					Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      p.FunctionCall.Name,
						Arguments: p.FunctionCall.Arguments,
					},
				},
			})
		default:
			return openai.ChatCompletionMessageParamUnion{}, errors.Errorf("openai: unsupported AI message part type: %T", part)
		}
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}, nil
}

// ToTools converts LLM tool definitions to OpenAI SDK tool parameters.
// Returns nil if no tools are provided.
func ToTools(tools []llms.Tool) ([]openai.ChatCompletionToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	sdkTools := make([]openai.ChatCompletionToolUnionParam, len(tools))
	for i, tool := range tools {
		if tool.Function == nil {
			return nil, errors.Errorf("openai: tool %d has no function definition", i)
		}
		params, err := toFunctionParameters(tool.Function.Parameters)
		if err != nil {
			return nil, errors.WithMessagef(err, "openai: tool %q", tool.Function.Name)
		}
		sdkTools[i] = openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Function.Name,
			Description: openai.String(tool.Function.Description),
			Parameters:  params,
		})
	}
	return sdkTools, nil
}

// toFunctionParameters normalizes an arbitrary JSON schema value into the
// map form the SDK expects.
func toFunctionParameters(params any) (openai.FunctionParameters, error) {
	if params == nil {
		return openai.FunctionParameters{"type": "object"}, nil
	}
	if m, ok := params.(map[string]any); ok {
		return openai.FunctionParameters(m), nil
	}
	js, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal parameters")
	}
	var m map[string]any
	if err := json.Unmarshal(js, &m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal parameters")
	}
	return openai.FunctionParameters(m), nil
}
