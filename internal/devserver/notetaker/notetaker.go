package notetaker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/procure-chat/backend/internal/config"
	"github.com/zhouzirui/procure-chat/backend/internal/model/form"
	"github.com/zhouzirui/procure-chat/backend/internal/model/session"
)

const extractionPrompt = `You are a note-taking assistant for a procurement intake form.
The current form state is:

{form}

Extract any field values the user's message provides and answer with a JSON
object of the exact same shape, containing only the values you extracted and
empty strings everywhere else. Dates must be formatted as YYYY-MM-DD. The
type_of_contract is either "internal" or "external". Answer with JSON only.`

// NoteTaker turns a user message into a reply and an updated form. With an
// Ark model configured it extracts field values from free text; without one
// it falls back to walking the form one question at a time.
type NoteTaker struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// New builds the note taker. A disabled AI config yields the deterministic
// fallback rather than an error, mirroring how the server boots without
// credentials.
func New(ctx context.Context, cfg config.AIConfig) (*NoteTaker, error) {
	if !cfg.Enabled() {
		return &NoteTaker{}, nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(extractionPrompt),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile extraction chain: %w", err)
	}

	return &NoteTaker{chain: runnable}, nil
}

// Enabled reports whether model-backed extraction is available.
func (n *NoteTaker) Enabled() bool { return n.chain != nil }

// Respond processes one chat turn against the stored document and returns
// the reply plus the merged form. The stored document is not mutated.
func (n *NoteTaker) Respond(ctx context.Context, stored *form.Document, history []session.Message, message string) (string, *form.Document, error) {
	updated := stored.Clone()

	var captured []string
	if n.chain != nil {
		proposal, err := n.extract(ctx, updated, history, message)
		if err != nil {
			return "", nil, err
		}
		if proposal != nil {
			captured = append(captured, form.FillAllEmpty(updated, proposal)...)
			captured = append(captured, form.MergeUpdated(updated, proposal)...)
		}
	}

	// Server-side normalization: canonical dates where possible, conditional
	// fields cleared when they stop applying.
	if err := updated.Normalize(); err != nil {
		log.Printf("[notetaker] merged form kept non-canonical values: %v", err)
	}

	return buildReply(updated, captured), updated, nil
}

func (n *NoteTaker) extract(ctx context.Context, current *form.Document, history []session.Message, message string) (*form.Document, error) {
	formJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return nil, err
	}

	response, err := n.chain.Invoke(ctx, map[string]any{
		"form":    string(formJSON),
		"history": buildHistoryMessages(history),
		"query":   message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run extraction chain: %w", err)
	}

	var proposal form.Document
	if err := json.Unmarshal([]byte(stripFences(response.Content)), &proposal); err != nil {
		// A malformed model answer degrades to "nothing extracted".
		log.Printf("[notetaker] unparseable extraction output: %v", err)
		return nil, nil
	}
	return &proposal, nil
}

// buildHistoryMessages turns the stored turns into chain context so the model
// can resolve references like "the same date as the start".
func buildHistoryMessages(messages []session.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, 2*(len(messages)-startIdx))
	for _, msg := range messages[startIdx:] {
		history = append(history, schema.UserMessage(msg.Prompt))
		history = append(history, schema.AssistantMessage(msg.Response, nil))
	}
	return history
}

// stripFences removes a ```json ... ``` wrapper when the model adds one.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func buildReply(doc *form.Document, captured []string) string {
	next := form.FirstEmptyPath(doc)

	switch {
	case len(captured) > 0 && next == "":
		return fmt.Sprintf("Noted %s. The form is complete, review it and save when ready.", fieldList(captured))
	case len(captured) > 0:
		return fmt.Sprintf("Noted %s. Next, what about the %s?", fieldList(captured), fieldName(next))
	case next == "":
		return "The form is already complete. You can still adjust any field by telling me the new value."
	default:
		return fmt.Sprintf("Could you tell me the %s?", fieldName(next))
	}
}

func fieldList(paths []string) string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = fieldName(p)
	}
	return strings.Join(names, ", ")
}

// fieldName turns a schema path into readable prose, e.g.
// "financial_details.start_date" into "start date".
func fieldName(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		path = path[idx+1:]
	}
	return strings.ReplaceAll(path, "_", " ")
}
