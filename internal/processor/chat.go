package processor

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/joey/internal/completion"
	"github.com/MikeSquared-Agency/joey/internal/conversation"
	"github.com/MikeSquared-Agency/joey/internal/hermes"
)

// ChatError is returned by Chat in hard-fail mode.
type ChatError struct {
	Err error
}

func (e *ChatError) Error() string {
	var statusErr *completion.StatusError
	if errors.As(e.Err, &statusErr) {
		return fmt.Sprintf("Completion API error: %d", statusErr.StatusCode)
	}
	return fmt.Sprintf("Completion request failed: %v", e.Err)
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

// SoftReply renders a completion failure as the reply shown to the user.
func SoftReply(err error) string {
	var statusErr *completion.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("Completion API error: %d", statusErr.StatusCode)
	}
	return fmt.Sprintf("Unexpected error: %v", err)
}

// Chat assembles the context block, builds the prompt from history and
// returns the model's reply.
func (p *Processor) Chat(ctx context.Context, history []conversation.Message) (string, error) {
	start := time.Now()

	var contextBlock string
	if p.builder.ContextAware {
		contextBlock = p.assembler.Assemble(p.store.Snapshot())
	}
	entries := p.builder.Build(contextBlock, history)

	p.logger.Debug("prompt built",
		"history_len", len(history),
		"window_len", len(entries)-1,
		"context_chars", utf8.RuneCountInString(contextBlock),
	)

	reply, err := p.llm.Complete(ctx, entries)

	evt := hermes.ChatCompleted{
		Envelope:     hermes.NewEnvelope(),
		Model:        p.model,
		HistoryLen:   len(history),
		WindowLen:    len(entries) - 1,
		ContextChars: utf8.RuneCountInString(contextBlock),
		ReplyChars:   utf8.RuneCountInString(reply),
		Outcome:      "ok",
		DurationMS:   time.Since(start).Milliseconds(),
	}
	if err != nil {
		evt.Outcome = "error"
	}
	p.publish(hermes.SubjectChatCompleted, evt)

	if err != nil {
		p.logger.Error("completion failed", "model", p.model, "error", err)
		if p.softFail {
			return SoftReply(err), nil
		}
		return "", &ChatError{Err: err}
	}
	return reply, nil
}
