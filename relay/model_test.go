package relay_test

import (
	"context"
	"errors"
	"testing"

	"github.com/a-h/chatbridge/relay"
	"github.com/google/go-cmp/cmp"
	"github.com/tmc/langchaingo/llms"
)

type fakeLLM struct {
	chunks   []string
	err      error
	messages []llms.MessageContent
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	for _, chunk := range f.chunks {
		if opts.StreamingFunc == nil {
			break
		}
		if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
			return nil, err
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestModel(t *testing.T) {
	llm := &fakeLLM{chunks: []string{" He", "llo", "\n"}}
	m := relay.NewModel(discard, llm, 0)

	r, err := m.Relay(context.Background(), "Say hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Reply != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", r.Reply)
	}
	expected := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "Say hello")}
	if diff := cmp.Diff(expected, llm.messages); diff != "" {
		t.Errorf("unexpected messages: %v", diff)
	}
}

func TestModelError(t *testing.T) {
	llm := &fakeLLM{chunks: []string{"partial"}, err: errors.New("model not found")}
	m := relay.NewModel(discard, llm, 0)

	r, err := m.Relay(context.Background(), "Say hello")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if r.Reply != "" {
		t.Errorf("expected no reply, got %q", r.Reply)
	}
}
