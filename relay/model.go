package relay

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
)

func NewModel(log *slog.Logger, llm llms.Model, timeout time.Duration) *Model {
	return &Model{
		log:     log,
		llm:     llm,
		timeout: timeout,
	}
}

// Model relays each message to a langchaingo model, e.g. an Ollama server,
// buffering the streamed chunks into a single reply.
type Model struct {
	log     *slog.Logger
	llm     llms.Model
	timeout time.Duration
}

// Relay sends the message as a single human turn and returns the trimmed reply.
func (m *Model) Relay(ctx context.Context, message string) (r Result, err error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	buf := new(bytes.Buffer)
	f := func(ctx context.Context, chunk []byte) error {
		_, err := buf.Write(chunk)
		return err
	}

	start := time.Now()
	_, err = m.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, message),
	}, llms.WithStreamingFunc(f))
	r.Duration = time.Since(start)
	if err != nil {
		return r, fmt.Errorf("relay: failed to generate content: %w", err)
	}
	m.log.Debug("content generated", slog.Duration("duration", r.Duration))

	r.Reply = strings.TrimSpace(buf.String())
	return r, nil
}
