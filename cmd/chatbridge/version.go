package main

import (
	"context"
	"fmt"

	"github.com/a-h/chatbridge"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(chatbridge.Version)
	return nil
}
