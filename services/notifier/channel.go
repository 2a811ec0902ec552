package notifier

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Channel delivers messages to a chat
type Channel interface {
	// SendText sends a Markdown formatted message
	SendText(ctx context.Context, chatID int64, body string) error

	// SendImage sends the image file at path with a caption
	SendImage(ctx context.Context, chatID int64, path, caption string) error
}

// StdoutChannel writes rendered messages instead of delivering them
type StdoutChannel struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStdoutChannel creates a channel writing to out
func NewStdoutChannel(out io.Writer) *StdoutChannel {
	return &StdoutChannel{out: out}
}

// SendText writes the message body
func (c *StdoutChannel) SendText(_ context.Context, _ int64, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "%s\n\n", body)
	return err
}

// SendImage writes where the image was saved
func (c *StdoutChannel) SendImage(_ context.Context, _ int64, path, caption string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "[chart] %s saved to %s\n", caption, path)
	return err
}
