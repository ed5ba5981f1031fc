package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/elicitation/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Channel converses with a person over a line-oriented terminal. It serves
// one conversation at a time.
type Channel struct {
	out   *termenv.Output
	lines <-chan line

	mu     sync.Mutex
	asked  bool
	closed bool
}

type line struct {
	text string
	err  error
}

// New reads answers from in and writes prompts to out. Colours are used only
// when out is a terminal.
func New(in io.Reader, out io.Writer) *Channel {
	profile := termenv.Ascii
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.EnvColorProfile()
	}
	return &Channel{
		out:   termenv.NewOutput(out, termenv.WithProfile(profile)),
		lines: readLines(in),
	}
}

// NewStdio converses over the process standard streams.
func NewStdio() *Channel {
	return New(os.Stdin, os.Stdout)
}

// Interactive reports whether stdin is a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readLines feeds lines from r; a blocking read must not hold Await past
// cancellation, so reading happens on its own goroutine.
func readLines(r io.Reader) <-chan line {
	ch := make(chan line)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- line{text: sc.Text()}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		ch <- line{err: err}
	}()
	return ch
}

// Send prints the prompt.
func (c *Channel) Send(ctx context.Context, p domain.Prompt) error {
	if err := ctx.Err(); err != nil {
		return domain.ClassifyChannel("send", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = true
	if _, err := io.WriteString(c.out, c.render(p)); err != nil {
		return domain.ClassifyChannel("send", fmt.Errorf("%w: %v", domain.ErrTransport, err))
	}
	return nil
}

func (c *Channel) render(p domain.Prompt) string {
	var b strings.Builder
	if p.Correction != "" {
		b.WriteString(c.out.String("✗ " + p.Correction).Foreground(c.out.Color("#f87171")).String())
		b.WriteString("\n")
	}
	if p.Field != "" {
		b.WriteString(c.out.String(p.Field).Faint().String())
		b.WriteString(" ")
	}
	b.WriteString(c.out.String(p.Message).Bold().String())
	switch p.Kind {
	case domain.PromptBoolean:
		b.WriteString(" [y/n]")
	case domain.PromptSelect:
		b.WriteString(" (" + strings.Join(p.Options, " | ") + ")")
	case domain.PromptObject:
		b.WriteString(" (JSON)")
	}
	b.WriteString("\n")
	b.WriteString(c.out.String("> ").Foreground(c.out.Color("#818cf8")).String())
	return b.String()
}

// Await reads one line. End of input is a transport failure.
func (c *Channel) Await(ctx context.Context) (domain.Response, error) {
	c.mu.Lock()
	asked, closed := c.asked, c.closed
	c.asked = false
	c.mu.Unlock()
	if !asked {
		return domain.Response{}, domain.ClassifyChannel("await", fmt.Errorf("%w: await without prompt", domain.ErrTransport))
	}
	if closed {
		return domain.Response{}, domain.ClassifyChannel("await", fmt.Errorf("%w: %v", domain.ErrTransport, io.EOF))
	}

	select {
	case <-ctx.Done():
		return domain.Response{}, domain.ClassifyChannel("await", ctx.Err())
	case l, ok := <-c.lines:
		if !ok || l.err != nil {
			c.mu.Lock()
			c.closed = true
			c.mu.Unlock()
			err := io.EOF
			if ok {
				err = l.err
			}
			return domain.Response{}, domain.ClassifyChannel("await", fmt.Errorf("%w: %v", domain.ErrTransport, err))
		}
		return domain.TextResponse(l.text), nil
	}
}
