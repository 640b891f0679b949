package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/a-h/chatbridge/client"
	"github.com/a-h/chatbridge/models"
)

type AskCommand struct {
	ChatBridgeURL string `help:"The URL of the chat bridge server." env:"CHAT_BRIDGE_URL" default:"http://localhost:9020"`
	Message       string `help:"The message to send." required:""`
	Pretty        bool   `help:"Pretty print the JSON output." default:"true" negatable:""`
}

func (c AskCommand) Run(ctx context.Context) (err error) {
	cbc := client.New(c.ChatBridgeURL)
	resp, err := cbc.ChatPost(ctx, models.ChatPostRequest{
		Message: &c.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
