package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog/log"
)

// ToolSpec declares one tool to the model: name, description and a
// JSON-schema object for its input.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ContentBlock is one element of a message in the Claude messages API.
// Text blocks carry Text; tool_use blocks carry ID/Name/Input;
// tool_result blocks carry ToolUseID/Content.
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

func UserMessage(text string) Message {
	return Message{
		Role:    "user",
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func AssistantMessage(blocks []ContentBlock) Message {
	return Message{Role: "assistant", Content: blocks}
}

func ToolResultBlock(toolUseID string, payload string) ContentBlock {
	return ContentBlock{
		Type:      "tool_result",
		ToolUseID: toolUseID,
		Content:   payload,
	}
}

// ToolRequest is one turn of a tool-augmented conversation: the pinned
// system instruction, the declared tool set and the full message history.
type ToolRequest struct {
	System      string
	Tools       []ToolSpec
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ToolCall is a validated tool invocation request emitted by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolTurn is the model's reply: raw content blocks (to feed back into the
// history) plus the partitioned view the orchestrator works with.
type ToolTurn struct {
	Content    []ContentBlock
	Text       string
	ToolCalls  []ToolCall
	StopReason string
}

type claudeToolRequest struct {
	AnthropicVersion string     `json:"anthropic_version"`
	MaxTokens        int        `json:"max_tokens"`
	Temperature      float64    `json:"temperature,omitempty"`
	System           string     `json:"system,omitempty"`
	Messages         []Message  `json:"messages"`
	Tools            []ToolSpec `json:"tools,omitempty"`
}

type claudeToolResponse struct {
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

func (c *Client) InvokeWithTools(ctx context.Context, request ToolRequest) (*ToolTurn, error) {
	payload := claudeToolRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        request.MaxTokens,
		Temperature:      request.Temperature,
		System:           request.System,
		Messages:         request.Messages,
		Tools:            request.Tools,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool request: %w", err)
	}

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model: %w", err)
	}

	return parseToolTurn(output.Body)
}

// parseToolTurn validates the model's content blocks: text fragments are
// concatenated, tool_use blocks become ToolCalls. Blocks with an empty tool
// name or an undecodable input object are dropped rather than failing the
// whole turn.
func parseToolTurn(body []byte) (*ToolTurn, error) {
	var response claudeToolResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bedrock response: %w", err)
	}

	turn := &ToolTurn{
		Content:    response.Content,
		StopReason: response.StopReason,
	}

	for _, block := range response.Content {
		switch block.Type {
		case "text":
			turn.Text += block.Text
		case "tool_use":
			if block.Name == "" {
				log.Warn().Str("id", block.ID).Msg("Dropping tool call with empty name")
				continue
			}

			args := map[string]any{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					log.Warn().Err(err).Str("tool", block.Name).Msg("Dropping tool call with malformed input")
					continue
				}
			}

			turn.ToolCalls = append(turn.ToolCalls, ToolCall{
				ID:   block.ID,
				Name: block.Name,
				Args: args,
			})
		}
	}

	return turn, nil
}
