package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Command is a parsed slash command.
type Command struct {
	Name    string
	Args    []string
	RawText string
}

var (
	// ErrNotACommand is returned by Parse when the text lacks the prefix.
	ErrNotACommand = errors.New("relay: not a command")
	// ErrUnknownCommand is returned by Route for unregistered names.
	ErrUnknownCommand = errors.New("relay: unknown command")
)

// Handler answers a command in lang.
type Handler func(ctx context.Context, cmd *Command, lang string) (string, error)

// Commands routes slash commands to handlers.
type Commands struct {
	handlers map[string]Handler
	prefix   string
}

// NewCommands returns an empty command table for prefix.
func NewCommands(prefix string) *Commands {
	return &Commands{handlers: make(map[string]Handler), prefix: prefix}
}

// Register binds name (without prefix, case-insensitive) to h.
func (c *Commands) Register(name string, h Handler) {
	c.handlers[strings.ToLower(name)] = h
}

// Parse splits text into a Command.
func (c *Commands) Parse(text string) (*Command, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, c.prefix) {
		return nil, ErrNotACommand
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, c.prefix))
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrUnknownCommand)
	}
	return &Command{Name: strings.ToLower(parts[0]), Args: parts[1:], RawText: text}, nil
}

// Route parses text and runs the matching handler. An unregistered name
// returns the parsed command with ErrUnknownCommand.
func (c *Commands) Route(ctx context.Context, text, lang string) (*Command, string, error) {
	cmd, err := c.Parse(text)
	if err != nil {
		return nil, "", err
	}
	h, ok := c.handlers[cmd.Name]
	if !ok {
		return cmd, "", fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
	}
	out, err := h(ctx, cmd, lang)
	return cmd, out, err
}
